package xmem

import (
	"sync"
	"sync/atomic"
	"time"
)

// Cache 是有界的并发安全 TTL 缓存。
// 必须通过 [New] 函数创建，零值不可用（方法调用会 panic）。
// 所有方法都是并发安全的。
// 调用 Close 后，所有读操作返回零值/false，写操作静默忽略。
type Cache[K comparable, V any] struct {
	shards    []shard[K, V]
	shardMask uint64
	keyHash   func(K) uint64

	// polMu 保护账本与在账计数。这是唯一的全局临界区：
	// 无关 key 的纯读互不阻塞，只有淘汰簿记在此短暂串行。
	// 锁序：允许持分片锁再取 polMu（写入路径），反向嵌套禁止。
	polMu  sync.Mutex
	ledger ledger[K, V]
	live   atomic.Int64

	maxEntries int
	defaultTTL time.Duration
	onEvict    func(K, V, Reason)

	hits        atomic.Uint64
	misses      atomic.Uint64
	evictions   atomic.Uint64
	expirations atomic.Uint64

	closed    atomic.Bool
	closeOnce sync.Once
	sweepStop chan struct{}
	wg        sync.WaitGroup
}

// New 创建新的缓存。
// 如果 cfg.MaxEntries <= 0，返回 ErrInvalidSize。
// 如果 cfg.MaxEntries > 16,777,216，返回 ErrSizeExceedsMax。
// 如果 cfg.DefaultTTL < 0，返回 ErrInvalidTTL。
// 如果 cfg.Policy 不是已定义的策略，返回 ErrInvalidPolicy。
func New[K comparable, V any](cfg Config, opts ...Option[K, V]) (*Cache[K, V], error) {
	if cfg.MaxEntries <= 0 {
		return nil, ErrInvalidSize
	}
	if cfg.MaxEntries > maxEntriesLimit {
		return nil, ErrSizeExceedsMax
	}
	if cfg.DefaultTTL < 0 {
		return nil, ErrInvalidTTL
	}

	o := defaultOptions[K, V]()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	led, err := newLedger[K, V](cfg.Policy, cfg.MaxEntries)
	if err != nil {
		return nil, err
	}

	keyHash := o.keyHash
	if keyHash == nil {
		keyHash = defaultKeyHash[K]()
	}

	c := &Cache[K, V]{
		shards:     make([]shard[K, V], o.shardCount),
		shardMask:  uint64(o.shardCount - 1),
		keyHash:    keyHash,
		ledger:     led,
		maxEntries: cfg.MaxEntries,
		defaultTTL: cfg.DefaultTTL,
		onEvict:    o.onEvict,
	}
	for i := range c.shards {
		c.shards[i].entries = make(map[K]*entry[K, V])
	}

	if o.sweepInterval > 0 {
		c.sweepStop = make(chan struct{})
		c.wg.Add(1)
		go c.sweepLoop(o.sweepInterval)
	}

	return c, nil
}

// Set 插入或覆盖条目，使用缓存的默认 TTL。
// 返回值表示本次写入是否触发了容量淘汰，而非操作是否成功。
//
//   - 如果 key 已存在且未过期，更新值并刷新 TTL 与访问顺序，返回 false
//   - 如果插入后在账条目数超过 MaxEntries，按策略淘汰并返回 true
//   - 如果缓存已关闭，静默忽略并返回 false
func (c *Cache[K, V]) Set(key K, value V) bool {
	return c.set(key, value, c.defaultTTL)
}

// SetWithTTL 插入或覆盖条目，使用逐条 TTL。
// ttl 为 0 表示该条目永不过期；负值是编程错误，直接 panic。
func (c *Cache[K, V]) SetWithTTL(key K, value V, ttl time.Duration) bool {
	if ttl < 0 {
		panic("xmem: negative ttl")
	}
	return c.set(key, value, ttl)
}

func (c *Cache[K, V]) set(key K, value V, ttl time.Duration) bool {
	if c.closed.Load() {
		return false
	}

	now := time.Now().UnixNano()
	var expiresAt int64
	if ttl > 0 {
		expiresAt = now + int64(ttl)
	}

	h := c.keyHash(key)
	s := c.shardFor(h)

	s.mu.Lock()
	old := s.entries[key]
	if old != nil && !old.dead.Load() && !old.expiredAt(now) {
		// 原地覆盖：最后写入者胜出。
		old.value = value
		old.expiresAt = expiresAt
		s.mu.Unlock()

		c.polMu.Lock()
		if !old.dead.Load() {
			c.ledger.touch(old)
		}
		c.polMu.Unlock()
		return false
	}

	// 发布与入账在分片锁内一并完成：经映射观察到存活条目的
	// 并发 Get/Delete，看到的一定是已在账条目（锁序分片锁 → polMu）。
	c.polMu.Lock()
	if c.closed.Load() {
		// Close 的 purge 可能已经执行过，此时入账的条目再无人回收。
		c.polMu.Unlock()
		s.mu.Unlock()
		return false
	}

	e := &entry[K, V]{key: key, value: value, expiresAt: expiresAt, hash: h}
	s.entries[key] = e

	// 被替换的旧条目若是过期未清理的，仍在账上，需一并出账。
	var expiredOld *entry[K, V]
	if old != nil && !old.dead.Load() {
		c.ledger.remove(old)
		old.dead.Store(true)
		c.live.Add(-1)
		expiredOld = old
	}

	c.ledger.add(e)
	n := c.live.Load() + 1
	var victims []*entry[K, V]
	for n > int64(c.maxEntries) {
		v := c.ledger.victim(e)
		if v == nil {
			break
		}
		c.ledger.remove(v)
		v.dead.Store(true)
		n--
		victims = append(victims, v)
	}
	// live 只在淘汰完成后写入，读者任何时刻都观察不到超额计数。
	c.live.Store(n)
	c.polMu.Unlock()
	s.mu.Unlock()

	if expiredOld != nil {
		c.reclaim(expiredOld, ReasonExpired)
	}
	for _, v := range victims {
		c.reclaim(v, ReasonCapacity)
	}
	return len(victims) > 0
}

// Get 获取缓存值，并记录一次访问（影响淘汰顺序/频次）。
// 如果 key 不存在、已过期或缓存已关闭，返回零值和 false。
// 遇到已过期条目会顺手将其移除（惰性过期）。
func (c *Cache[K, V]) Get(key K) (value V, ok bool) {
	if c.closed.Load() {
		return value, false
	}

	now := time.Now().UnixNano()
	s := c.shardFor(c.keyHash(key))

	s.mu.RLock()
	e := s.entries[key]
	if e == nil || e.dead.Load() {
		s.mu.RUnlock()
		c.misses.Add(1)
		return value, false
	}
	if e.expiredAt(now) {
		s.mu.RUnlock()
		c.lazyExpire(key, e, now)
		c.misses.Add(1)
		return value, false
	}
	value = e.value
	s.mu.RUnlock()

	c.polMu.Lock()
	if !e.dead.Load() {
		c.ledger.touch(e)
	}
	c.polMu.Unlock()

	c.hits.Add(1)
	return value, true
}

// Peek 获取缓存值但不记录访问，不影响淘汰顺序。
// 过期条目同样返回 miss，但不做摘除。
func (c *Cache[K, V]) Peek(key K) (value V, ok bool) {
	if c.closed.Load() {
		return value, false
	}

	now := time.Now().UnixNano()
	s := c.shardFor(c.keyHash(key))

	s.mu.RLock()
	defer s.mu.RUnlock()
	e := s.entries[key]
	if e == nil || e.dead.Load() || e.expiredAt(now) {
		return value, false
	}
	return e.value, true
}

// Contains 检查键是否存在且未过期（不记录访问）。
// 与 Get/Peek 的 TTL 语义一致。
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.Peek(key)
	return ok
}

// Delete 删除缓存条目。
// 返回 true 表示键存在并被删除；对不存在的键是无副作用的 no-op。
// Delete 是调用方主动移除，不触发 OnEvict 回调。
func (c *Cache[K, V]) Delete(key K) bool {
	if c.closed.Load() {
		return false
	}

	s := c.shardFor(c.keyHash(key))
	s.mu.Lock()
	e := s.entries[key]
	if e != nil {
		delete(s.entries, key)
	}
	s.mu.Unlock()

	if e == nil {
		return false
	}

	c.polMu.Lock()
	removed := !e.dead.Load()
	if removed {
		c.ledger.remove(e)
		e.dead.Store(true)
		c.live.Add(-1)
	}
	c.polMu.Unlock()
	return removed
}

// Len 返回当前在账条目数，任何时刻不超过 MaxEntries。
//
// 注意：返回值可能包含已过期但尚未被访问或后台清理移除的条目。
// 如果缓存已关闭，返回 0。
func (c *Cache[K, V]) Len() int {
	if c.closed.Load() {
		return 0
	}
	return int(c.live.Load())
}

// Keys 返回所有在账键的切片，按淘汰顺序由旧到新排列。
//
// 注意：返回值可能包含已过期但尚未被清理的条目的键。
// 如果缓存已关闭，返回 nil。
func (c *Cache[K, V]) Keys() []K {
	if c.closed.Load() {
		return nil
	}

	c.polMu.Lock()
	entries := c.ledger.all()
	c.polMu.Unlock()

	keys := make([]K, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, e.key)
	}
	return keys
}

// Clear 清空所有缓存条目。
// 出账在策略互斥锁内一次完成，对并发读者原子生效：
// 锁释放后任何 Get 都不再命中旧条目，Clear 期间写入的新条目不受影响。
// Clear 是调用方主动移除，不触发 OnEvict 回调。
func (c *Cache[K, V]) Clear() {
	if c.closed.Load() {
		return
	}
	c.purge()
}

// Close 关闭缓存，停止后台清理 goroutine 并清空条目。
// 该方法是幂等的：多次调用只会执行一次清理。
// Close 后所有读操作返回零值/false，写操作静默忽略。
func (c *Cache[K, V]) Close() {
	c.closed.Store(true)
	c.closeOnce.Do(func() {
		if c.sweepStop != nil {
			close(c.sweepStop)
			c.wg.Wait()
		}
		c.purge()
	})
}

// purge 先在账本侧整体出账，再逐分片回收存储。
// dead 标记使出账对读者立即可见，映射侧的摘除可以滞后进行。
func (c *Cache[K, V]) purge() {
	c.polMu.Lock()
	doomed := c.ledger.all()
	for _, e := range doomed {
		e.dead.Store(true)
	}
	c.ledger.reset()
	c.live.Store(0)
	c.polMu.Unlock()

	for i := range c.shards {
		s := &c.shards[i]
		s.mu.Lock()
		for k, e := range s.entries {
			if e.dead.Load() {
				delete(s.entries, k)
			}
		}
		s.mu.Unlock()
	}
}

// lazyExpire 在访问路径上摘除已过期条目。
// 重新加写锁后校验指针与过期状态（乐观读后确认），
// 避免误删并发写入同一 key 的新条目。
func (c *Cache[K, V]) lazyExpire(key K, e *entry[K, V], now int64) {
	s := c.shardFor(e.hash)
	s.mu.Lock()
	if s.entries[key] != e || !e.expiredAt(now) {
		s.mu.Unlock()
		return
	}
	delete(s.entries, key)
	value := e.value
	s.mu.Unlock()

	c.polMu.Lock()
	removed := !e.dead.Load()
	if removed {
		c.ledger.remove(e)
		e.dead.Store(true)
		c.live.Add(-1)
	}
	c.polMu.Unlock()

	if !removed {
		return
	}
	c.expirations.Add(1)
	if c.onEvict != nil {
		c.onEvict(key, value, ReasonExpired)
	}
}

// reclaim 摘除一个已出账（dead）的条目并触发回调。
// 值在所属分片锁内读取：条目存活期间对 value 的写入都在该锁内。
func (c *Cache[K, V]) reclaim(e *entry[K, V], reason Reason) {
	s := c.shardFor(e.hash)
	s.mu.Lock()
	if s.entries[e.key] == e {
		delete(s.entries, e.key)
	}
	value := e.value
	s.mu.Unlock()

	if reason == ReasonCapacity {
		c.evictions.Add(1)
	} else {
		c.expirations.Add(1)
	}
	if c.onEvict != nil {
		c.onEvict(e.key, value, reason)
	}
}
