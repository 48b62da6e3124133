package xloader

import "errors"

var (
	// ErrNilCache 表示传入的缓存实例为 nil。
	ErrNilCache = errors.New("xloader: cache must not be nil")

	// ErrNilLoadFunc 表示传入的加载函数为 nil。
	ErrNilLoadFunc = errors.New("xloader: load function must not be nil")

	// ErrInvalidTTL 表示传入的 TTL 为负值。
	ErrInvalidTTL = errors.New("xloader: ttl must not be negative")

	// ErrLoadPanic 表示加载函数发生 panic，已被捕获并转换为错误。
	ErrLoadPanic = errors.New("xloader: load function panicked")
)
