package xmem

import (
	"container/list"
	"hash/maphash"
	"sync"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// entry 是缓存条目。
//
// 字段的并发归属：
//   - value、expiresAt 仅在所属分片锁内读写
//   - dead 在策略互斥锁内至多置位一次，读者无锁读取
//   - elem、freq 是账本簿记字段，仅在策略互斥锁内访问
//   - key、hash 创建后不再变更
type entry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt int64 // unix 纳秒；0 表示永不过期

	dead atomic.Bool

	elem *list.Element
	freq int

	hash uint64
}

// expiredAt 判断条目在 now（unix 纳秒）时刻是否已过期。
func (e *entry[K, V]) expiredAt(now int64) bool {
	exp := e.expiresAt
	return exp > 0 && now >= exp
}

// shard 是条目映射的一个分片。
// 分片只负责存储；容量和淘汰顺序由全局账本维护。
type shard[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]*entry[K, V]
}

func (c *Cache[K, V]) shardFor(hash uint64) *shard[K, V] {
	return &c.shards[hash&c.shardMask]
}

// defaultKeyHash 返回 K 类型的默认哈希函数。
// string 走 xxhash 快路径；其余 comparable 类型使用 hash/maphash，
// 这是对任意 comparable 值做哈希而不经反射的唯一途径。
func defaultKeyHash[K comparable]() func(K) uint64 {
	var zero K
	if _, ok := any(zero).(string); ok {
		return func(k K) uint64 {
			return xxhash.Sum64String(any(k).(string))
		}
	}
	seed := maphash.MakeSeed()
	return func(k K) uint64 {
		return maphash.Comparable(seed, k)
	}
}
