// Package indicator computes simple moving averages over closed bars and
// classifies alignment, compression, crossovers and volume spikes.
package indicator

import (
	"math"
	"slices"
)

// Snapshot 某一根K线上各周期的均线值, 窗口未填满的周期不出现
type Snapshot map[int]float64

// MovingAverages holds one simple moving average series per window length,
// index-aligned with the input values.
type MovingAverages struct {
	lengths []int
	values  map[int][]float64 // NaN: 窗口未填满或窗口内有缺失值
	n       int
}

// SMA computes the arithmetic mean of values over each window length. Every
// window is summed directly, so the value at index i depends only on
// values[i-L+1 : i+1].
func SMA(values []float64, lengths ...int) *MovingAverages {
	m := &MovingAverages{
		lengths: sortedLengths(lengths),
		values:  make(map[int][]float64, len(lengths)),
		n:       len(values),
	}
	for _, l := range m.lengths {
		series := make([]float64, len(values))
		for i := range series {
			series[i] = math.NaN()
			if l <= 0 || i < l-1 {
				continue
			}
			var sum float64
			for _, v := range values[i-l+1 : i+1] {
				sum += v
			}
			series[i] = sum / float64(l)
		}
		m.values[l] = series
	}
	return m
}

func (m *MovingAverages) Len() int {
	return m.n
}

// Lengths returns the window lengths in ascending order.
func (m *MovingAverages) Lengths() []int {
	return slices.Clone(m.lengths)
}

// At returns the average of the given length at bar idx.
func (m *MovingAverages) At(length, idx int) (float64, bool) {
	series, ok := m.values[length]
	if !ok || idx < 0 || idx >= len(series) {
		return 0, false
	}
	v := series[idx]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func (m *MovingAverages) Latest(length int) (float64, bool) {
	return m.At(length, m.n-1)
}

func (m *MovingAverages) Snapshot(idx int) Snapshot {
	snap := make(Snapshot, len(m.lengths))
	for _, l := range m.lengths {
		if v, ok := m.At(l, idx); ok {
			snap[l] = v
		}
	}
	return snap
}

func (m *MovingAverages) LatestSnapshot() Snapshot {
	return m.Snapshot(m.n - 1)
}

// Complete reports whether every length in lengths has a value.
func (s Snapshot) Complete(lengths []int) bool {
	for _, l := range lengths {
		if _, ok := s[l]; !ok {
			return false
		}
	}
	return true
}

// WindowSize is the number of closed bars needed for the longest length to
// be defined on the last two bars.
func WindowSize(lengths []int) int {
	if len(lengths) == 0 {
		return 2
	}
	return slices.Max(lengths) + 2
}

func sortedLengths(lengths []int) []int {
	res := slices.Clone(lengths)
	slices.Sort(res)
	return slices.Compact(res)
}
