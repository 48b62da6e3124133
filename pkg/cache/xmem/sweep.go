package xmem

import "time"

// sweepLoop 按固定间隔扫描并移除已过期条目。
// 仅在 WithSweepInterval 启用时由 New 启动，Close 通过 sweepStop 终止。
func (c *Cache[K, V]) sweepLoop(interval time.Duration) {
	defer c.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweepOnce()
		case <-c.sweepStop:
			return
		}
	}
}

// sweepOnce 扫描一轮所有分片，移除已过期条目。
// 每个分片先在读锁内收集候选，再逐条走惰性过期路径摘除，
// 摘除路径自带指针与过期状态复核，与并发覆盖写安全共存。
func (c *Cache[K, V]) sweepOnce() {
	now := time.Now().UnixNano()

	for i := range c.shards {
		s := &c.shards[i]

		var expired []*entry[K, V]
		s.mu.RLock()
		for _, e := range s.entries {
			if !e.dead.Load() && e.expiredAt(now) {
				expired = append(expired, e)
			}
		}
		s.mu.RUnlock()

		for _, e := range expired {
			c.lazyExpire(e.key, e, now)
		}
	}
}
