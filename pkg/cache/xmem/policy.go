package xmem

import (
	"container/list"
	"fmt"
	"slices"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// sampleSize 是 Hybrid 策略每次淘汰时参与频次比较的最旧条目数。
const sampleSize = 5

// ledger 是全局淘汰账本：维护条目的淘汰顺序与受害者选择。
// 所有方法仅在策略互斥锁内调用，实现无需自带同步。
//
// 账本与分片映射的对应关系由 Cache 负责维护：条目入账与出账
// 始终伴随映射侧的插入与摘除，不允许孤儿。
type ledger[K comparable, V any] interface {
	// add 将新条目入账，视为最新访问。
	add(e *entry[K, V])
	// touch 记录一次访问。
	touch(e *entry[K, V])
	// remove 将条目出账。条目必须在账（未 dead）。
	remove(e *entry[K, V])
	// victim 选出下一个淘汰受害者，跳过 exclude（刚插入的条目）。
	// 账上没有可淘汰条目时返回 nil。
	victim(exclude *entry[K, V]) *entry[K, V]
	// reset 清空账本。
	reset()
	// all 返回在账条目快照，按由旧到新的淘汰顺序。
	all() []*entry[K, V]
}

// newLedger 按策略构造账本。
func newLedger[K comparable, V any](p Policy, capacity int) (ledger[K, V], error) {
	switch p {
	case PolicyLRU:
		// +1：写入路径先入账再淘汰，账本需容纳一个瞬时超额条目，
		// 避免 simplelru 自行淘汰绕过 Cache 的出账流程。
		order, err := simplelru.NewLRU[K, *entry[K, V]](capacity+1, nil)
		if err != nil {
			return nil, fmt.Errorf("xmem: create lru ledger: %w", err)
		}
		return &lruLedger[K, V]{order: order}, nil
	case PolicyLFU:
		return &lfuLedger[K, V]{buckets: make(map[int]*list.List)}, nil
	case PolicyHybrid:
		return &hybridLedger[K, V]{
			order:  list.New(),
			sketch: newSketch(capacity),
			sample: sampleSize,
		}, nil
	default:
		return nil, ErrInvalidPolicy
	}
}

// =============================================================================
// LRU 账本
// =============================================================================

// lruLedger 基于 simplelru 维护访问顺序。
// 条目值存指针，账本不复制数据；Add/Get 均为 O(1)。
type lruLedger[K comparable, V any] struct {
	order *simplelru.LRU[K, *entry[K, V]]
}

func (l *lruLedger[K, V]) add(e *entry[K, V]) {
	l.order.Add(e.key, e)
}

func (l *lruLedger[K, V]) touch(e *entry[K, V]) {
	l.order.Get(e.key)
}

func (l *lruLedger[K, V]) remove(e *entry[K, V]) {
	l.order.Remove(e.key)
}

func (l *lruLedger[K, V]) victim(exclude *entry[K, V]) *entry[K, V] {
	_, e, ok := l.order.GetOldest()
	if !ok {
		return nil
	}
	if e != exclude {
		return e
	}
	// exclude 是刚入账的最新条目，只有账上仅剩它时才会被 GetOldest 选中。
	keys := l.order.Keys()
	if len(keys) < 2 {
		return nil
	}
	v, _ := l.order.Peek(keys[1])
	return v
}

func (l *lruLedger[K, V]) reset() {
	l.order.Purge()
}

func (l *lruLedger[K, V]) all() []*entry[K, V] {
	return l.order.Values()
}

// =============================================================================
// LFU 账本
// =============================================================================

// lfuLedger 维护频次桶：freq → 条目链表，链表队首是同频次中最久未访问者。
// touch 将条目迁移到下一频次桶的队尾，均摊 O(1)。
type lfuLedger[K comparable, V any] struct {
	buckets map[int]*list.List
	minFreq int
}

func (l *lfuLedger[K, V]) add(e *entry[K, V]) {
	e.freq = 1
	l.push(e)
	l.minFreq = 1
}

func (l *lfuLedger[K, V]) touch(e *entry[K, V]) {
	l.unlink(e)
	e.freq++
	l.push(e)
	if l.minFreq == 0 || e.freq < l.minFreq {
		l.minFreq = e.freq
	}
}

func (l *lfuLedger[K, V]) remove(e *entry[K, V]) {
	l.unlink(e)
}

func (l *lfuLedger[K, V]) victim(exclude *entry[K, V]) *entry[K, V] {
	if len(l.buckets) == 0 {
		return nil
	}
	if e := l.frontOf(l.minFreq, exclude); e != nil {
		return e
	}
	// 最小桶只剩刚插入的条目：退到次小频次桶。
	next := 0
	for f := range l.buckets {
		if f != l.minFreq && (next == 0 || f < next) {
			next = f
		}
	}
	if next == 0 {
		return nil
	}
	return l.frontOf(next, exclude)
}

func (l *lfuLedger[K, V]) reset() {
	l.buckets = make(map[int]*list.List)
	l.minFreq = 0
}

func (l *lfuLedger[K, V]) all() []*entry[K, V] {
	freqs := make([]int, 0, len(l.buckets))
	for f := range l.buckets {
		freqs = append(freqs, f)
	}
	slices.Sort(freqs)

	var out []*entry[K, V]
	for _, f := range freqs {
		for el := l.buckets[f].Front(); el != nil; el = el.Next() {
			out = append(out, el.Value.(*entry[K, V]))
		}
	}
	return out
}

func (l *lfuLedger[K, V]) push(e *entry[K, V]) {
	b := l.buckets[e.freq]
	if b == nil {
		b = list.New()
		l.buckets[e.freq] = b
	}
	e.elem = b.PushBack(e)
}

func (l *lfuLedger[K, V]) unlink(e *entry[K, V]) {
	b := l.buckets[e.freq]
	b.Remove(e.elem)
	e.elem = nil
	if b.Len() == 0 {
		delete(l.buckets, e.freq)
		if e.freq == l.minFreq {
			l.rescanMin()
		}
	}
}

// rescanMin 在最小频次桶清空后重新定位 minFreq。
// 复杂度与在用的不同频次数成正比，实际远小于条目数。
func (l *lfuLedger[K, V]) rescanMin() {
	m := 0
	for f := range l.buckets {
		if m == 0 || f < m {
			m = f
		}
	}
	l.minFreq = m
}

func (l *lfuLedger[K, V]) frontOf(freq int, exclude *entry[K, V]) *entry[K, V] {
	b := l.buckets[freq]
	if b == nil {
		return nil
	}
	for el := b.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry[K, V])
		if e != exclude {
			return e
		}
	}
	return nil
}

// =============================================================================
// Hybrid 账本
// =============================================================================

// hybridLedger 维护访问顺序链表（队首最旧）和 count-min 频次草图。
// 受害者在最旧的 sample 个条目中取估计频次最低者，频次相同取较旧者。
// 这样长期热点即使一段时间未被访问也不会立刻被单次扫描冲掉。
type hybridLedger[K comparable, V any] struct {
	order  *list.List
	sketch *sketch
	sample int
}

func (l *hybridLedger[K, V]) add(e *entry[K, V]) {
	e.elem = l.order.PushBack(e)
	l.sketch.increment(e.hash)
}

func (l *hybridLedger[K, V]) touch(e *entry[K, V]) {
	l.order.MoveToBack(e.elem)
	l.sketch.increment(e.hash)
}

func (l *hybridLedger[K, V]) remove(e *entry[K, V]) {
	l.order.Remove(e.elem)
	e.elem = nil
}

func (l *hybridLedger[K, V]) victim(exclude *entry[K, V]) *entry[K, V] {
	var best *entry[K, V]
	var bestFreq uint64
	scanned := 0
	for el := l.order.Front(); el != nil && scanned < l.sample; el = el.Next() {
		e := el.Value.(*entry[K, V])
		if e == exclude {
			continue
		}
		scanned++
		f := l.sketch.estimate(e.hash)
		if best == nil || f < bestFreq {
			best, bestFreq = e, f
		}
	}
	return best
}

func (l *hybridLedger[K, V]) reset() {
	l.order.Init()
	l.sketch.reset()
}

func (l *hybridLedger[K, V]) all() []*entry[K, V] {
	out := make([]*entry[K, V], 0, l.order.Len())
	for el := l.order.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value.(*entry[K, V]))
	}
	return out
}

// 编译期接口检查。
var (
	_ ledger[string, int] = (*lruLedger[string, int])(nil)
	_ ledger[string, int] = (*lfuLedger[string, int])(nil)
	_ ledger[string, int] = (*hybridLedger[string, int])(nil)
)
