package xmem

import (
	"fmt"
	"strconv"
	"time"
)

const (
	// maxEntriesLimit 缓存最大条目数上限。
	maxEntriesLimit = 1 << 24 // 16,777,216

	defaultShardCount = 32
	maxShardCount     = 1 << 16 // 65536
)

// Policy 表示淘汰策略。
type Policy int

const (
	// PolicyLRU 淘汰最久未访问的条目（默认）。
	PolicyLRU Policy = iota
	// PolicyLFU 淘汰访问频次最低的条目，频次相同时淘汰较旧者。
	PolicyLFU
	// PolicyHybrid 在最旧的若干条目中淘汰估计频次最低者（近似 频次×新近度）。
	PolicyHybrid
)

// String 返回 Policy 的可读字符串表示，用于调试和日志输出。
func (p Policy) String() string {
	switch p {
	case PolicyLRU:
		return "LRU"
	case PolicyLFU:
		return "LFU"
	case PolicyHybrid:
		return "Hybrid"
	default:
		return "Policy(" + strconv.Itoa(int(p)) + ")"
	}
}

// Reason 表示条目被移除的原因，传递给 OnEvict 回调。
type Reason int

const (
	// ReasonCapacity 表示条目因容量超限被淘汰。
	ReasonCapacity Reason = iota
	// ReasonExpired 表示条目因 TTL 过期被移除（惰性发现或后台清理）。
	ReasonExpired
)

// String 返回 Reason 的可读字符串表示。
func (r Reason) String() string {
	switch r {
	case ReasonCapacity:
		return "capacity"
	case ReasonExpired:
		return "expired"
	default:
		return "Reason(" + strconv.Itoa(int(r)) + ")"
	}
}

// Config 定义缓存配置。
type Config struct {
	// MaxEntries 缓存最大条目数。
	// 必须大于 0 且不超过 16,777,216。
	MaxEntries int

	// DefaultTTL 条目默认过期时间。
	// 0 表示永不过期，不允许负值。Set 使用该值；SetWithTTL 可逐条覆盖。
	DefaultTTL time.Duration

	// Policy 淘汰策略，默认 PolicyLRU。
	Policy Policy
}

// Option 定义缓存可选配置函数类型。
type Option[K comparable, V any] func(*options[K, V])

// options 内部可选配置。
type options[K comparable, V any] struct {
	shardCount    int
	sweepInterval time.Duration
	onEvict       func(key K, value V, reason Reason)
	keyHash       func(K) uint64
}

func defaultOptions[K comparable, V any]() options[K, V] {
	return options[K, V]{
		shardCount: defaultShardCount,
	}
}

// WithShardCount 设置条目映射的分片数量。
// 更多分片减少无关 key 之间的读写争用，但增加内存占用。
// n 必须为正整数且为 2 的幂，上限 65536，否则 New 返回错误。默认 32。
// 分片只切分存储；容量与淘汰顺序始终是全局的。
func WithShardCount[K comparable, V any](n int) Option[K, V] {
	return func(o *options[K, V]) {
		o.shardCount = n
	}
}

// WithSweepInterval 启用后台清理 goroutine，按固定间隔主动移除已过期条目。
// 0（默认）表示只做惰性过期：过期条目在下次被访问时移除。
// 负值会使 New 返回 ErrInvalidSweepInterval。
// 启用后必须调用 Close 释放清理 goroutine。
func WithSweepInterval[K comparable, V any](d time.Duration) Option[K, V] {
	return func(o *options[K, V]) {
		o.sweepInterval = d
	}
}

// WithOnEvict 设置条目被移除时的回调函数。
//
// 回调只在缓存主动移除条目时触发：容量淘汰（ReasonCapacity）和
// TTL 过期（ReasonExpired，含惰性发现与后台清理两条路径）。
// Delete/Clear/Close 是调用方主动发起的移除，不触发回调。
//
// 回调在策略互斥锁之外执行，但仍处于调用方的操作路径上：
//   - 严禁在回调中调用 Cache 自身的任何方法（Get/Set/Delete 等）
//   - 应避免耗时操作（如网络 I/O），以免拖慢触发淘汰的写入
//   - 如需复杂处理，应将事件发送到外部 channel 异步消费
func WithOnEvict[K comparable, V any](fn func(key K, value V, reason Reason)) Option[K, V] {
	return func(o *options[K, V]) {
		o.onEvict = fn
	}
}

// WithKeyHash 设置 key 的哈希函数，用于分片选择和频次草图。
// 默认实现：string key 使用 xxhash，其余 comparable 类型使用 hash/maphash。
// fn 为 nil 时保持默认。
func WithKeyHash[K comparable, V any](fn func(K) uint64) Option[K, V] {
	return func(o *options[K, V]) {
		if fn != nil {
			o.keyHash = fn
		}
	}
}

func (o *options[K, V]) validate() error {
	sc := o.shardCount
	if sc <= 0 || sc > maxShardCount || sc&(sc-1) != 0 {
		return fmt.Errorf("%w (max %d), got %d", ErrInvalidShardCount, maxShardCount, sc)
	}
	if o.sweepInterval < 0 {
		return ErrInvalidSweepInterval
	}
	return nil
}
