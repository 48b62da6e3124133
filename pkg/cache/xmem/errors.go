package xmem

import "errors"

var (
	// ErrInvalidSize 表示缓存容量配置无效。
	ErrInvalidSize = errors.New("xmem: max entries must be greater than 0")

	// ErrSizeExceedsMax 表示缓存容量超过上限 (16,777,216)。
	ErrSizeExceedsMax = errors.New("xmem: max entries must not exceed 16777216")

	// ErrInvalidTTL 表示默认 TTL 配置无效。
	ErrInvalidTTL = errors.New("xmem: default TTL must not be negative")

	// ErrInvalidPolicy 表示淘汰策略配置无效。
	ErrInvalidPolicy = errors.New("xmem: unknown eviction policy")

	// ErrInvalidShardCount 表示分片数量配置无效。
	ErrInvalidShardCount = errors.New("xmem: shard count must be a positive power of 2")

	// ErrInvalidSweepInterval 表示后台清理间隔配置无效。
	ErrInvalidSweepInterval = errors.New("xmem: sweep interval must not be negative")
)
