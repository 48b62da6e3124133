package xmem

const (
	sketchRows     = 4
	sketchMinWidth = 64
	sketchMaxWidth = 1 << 20

	// sketchAgingFactor 控制老化节奏：累计增量达到容量的该倍数时所有计数减半。
	// 减半而非清零保留了相对热度排序，与 TinyLFU 的 reset 机制一致。
	sketchAgingFactor = 10
)

// sketchSeeds 是各行的乘法散列种子（奇数，splitmix64 增量的若干倍）。
var sketchSeeds = [sketchRows]uint64{
	0x9E3779B97F4A7C15,
	0xC2B2AE3D27D4EB4F,
	0x165667B19E3779F9,
	0xD6E8FEB86659FD93,
}

// sketch 是 count-min 频次草图，为 Hybrid 策略提供近似访问频次。
// 计数为 8 位饱和计数器，定期减半老化。仅在策略互斥锁内访问。
type sketch struct {
	rows       [sketchRows][]uint8
	mask       uint64
	increments int
	resetAt    int
}

// newSketch 按缓存容量构造草图。
// 行宽取不小于 8×capacity 的 2 的幂，并夹在 [64, 1<<20] 内。
func newSketch(capacity int) *sketch {
	width := nextPow2(capacity * 8)
	if width < sketchMinWidth {
		width = sketchMinWidth
	}
	if width > sketchMaxWidth {
		width = sketchMaxWidth
	}

	s := &sketch{
		mask:    uint64(width - 1),
		resetAt: capacity * sketchAgingFactor,
	}
	for i := range s.rows {
		s.rows[i] = make([]uint8, width)
	}
	return s
}

func (s *sketch) increment(hash uint64) {
	for i := range s.rows {
		idx := s.index(hash, i)
		if s.rows[i][idx] < 255 {
			s.rows[i][idx]++
		}
	}
	s.increments++
	if s.increments >= s.resetAt {
		s.age()
	}
}

// estimate 返回近似频次：各行计数的最小值。
// 只会高估（哈希冲突），不会低估。
func (s *sketch) estimate(hash uint64) uint64 {
	m := uint64(255)
	for i := range s.rows {
		v := uint64(s.rows[i][s.index(hash, i)])
		if v < m {
			m = v
		}
	}
	return m
}

func (s *sketch) index(hash uint64, row int) uint64 {
	return (hash * sketchSeeds[row]) >> 13 & s.mask
}

// age 将所有计数减半，使历史热度随时间衰减。
func (s *sketch) age() {
	for i := range s.rows {
		row := s.rows[i]
		for j := range row {
			row[j] >>= 1
		}
	}
	s.increments = 0
}

func (s *sketch) reset() {
	for i := range s.rows {
		clear(s.rows[i])
	}
	s.increments = 0
}

// nextPow2 返回不小于 n 的最小 2 的幂。
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
