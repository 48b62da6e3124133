package xstat

import "errors"

var (
	// ErrEmptyName 表示注册的缓存名称为空。
	ErrEmptyName = errors.New("xstat: cache name must not be empty")

	// ErrNilSource 表示注册的指标来源为 nil。
	ErrNilSource = errors.New("xstat: source must not be nil")

	// ErrDuplicateName 表示同一名称已被注册。
	ErrDuplicateName = errors.New("xstat: cache name already registered")
)
