package indicator

import "slices"

type Direction string

const (
	CrossUp   Direction = "upward"
	CrossDown Direction = "downward"
	CrossNone Direction = "none"
)

// Pair 一组指定监控的快慢均线
type Pair struct {
	Fast int
	Slow int
}

// AdjacentPairs pairs every length with the next longer one.
func AdjacentPairs(lengths []int) []Pair {
	asc := sortedLengths(lengths)
	pairs := make([]Pair, 0, len(asc))
	for i := 0; i+1 < len(asc); i++ {
		pairs = append(pairs, Pair{Fast: asc[i], Slow: asc[i+1]})
	}
	return pairs
}

// crossAt compares fast-slow between two consecutive bars. The previous
// sample is non-strict so a tick of exact equality still counts.
func crossAt(prevFast, prevSlow, curFast, curSlow float64) Direction {
	prev, cur := prevFast-prevSlow, curFast-curSlow
	switch {
	case prev <= 0 && cur > 0:
		return CrossUp
	case prev >= 0 && cur < 0:
		return CrossDown
	default:
		return CrossNone
	}
}

// DetectCross classifies the transition between the last two bars.
func DetectCross(m *MovingAverages, fast, slow int) Direction {
	cur := m.Len() - 1
	prevFast, ok1 := m.At(fast, cur-1)
	prevSlow, ok2 := m.At(slow, cur-1)
	curFast, ok3 := m.At(fast, cur)
	curSlow, ok4 := m.At(slow, cur)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		return CrossNone
	}
	return crossAt(prevFast, prevSlow, curFast, curSlow)
}

// MultiCross 同一根K线内一条快线同向穿越两条及以上的慢线
type MultiCross struct {
	Fast      int
	Direction Direction
	Slows     []int
}

// DetectMultiCross sweeps every slower length of the system for each fast
// length and reports the fast lengths that crossed two or more of them in
// the same direction.
func DetectMultiCross(m *MovingAverages, lengths []int) []MultiCross {
	asc := sortedLengths(lengths)
	var res []MultiCross
	for i, fast := range asc {
		crossed := map[Direction][]int{}
		for _, slow := range asc[i+1:] {
			if d := DetectCross(m, fast, slow); d != CrossNone {
				crossed[d] = append(crossed[d], slow)
			}
		}
		for _, d := range []Direction{CrossUp, CrossDown} {
			if len(crossed[d]) >= 2 {
				res = append(res, MultiCross{
					Fast:      fast,
					Direction: d,
					Slows:     slices.Clone(crossed[d]),
				})
			}
		}
	}
	return res
}
