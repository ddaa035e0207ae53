package indicator

import (
	"fmt"
	"slices"
)

type Ordering string

const (
	OrderingBullish Ordering = "bullish"
	OrderingBearish Ordering = "bearish"
	OrderingNeither Ordering = "neither"
)

type PricePosition string

const (
	AboveAll PricePosition = "above_all"
	BelowAll PricePosition = "below_all"
	Mixed    PricePosition = "mixed"
)

// DefaultCompressionThreshold is the spread (percent) under which a system is
// considered compressed.
const DefaultCompressionThreshold = 3.0

type Alignment struct {
	Ordering       Ordering
	CompressionPct float64
	Compressed     bool
	PricePosition  PricePosition
	// CurrentOrder 按均线值从高到低排列的周期
	CurrentOrder []int
	// Distances 相邻周期之间的距离(%), key 形如 MA13_MA25
	Distances map[string]float64
}

// Analyze classifies one snapshot. It fails with ErrInsufficientData when any
// length lacks a value.
func Analyze(snap Snapshot, lengths []int, price, compressionThreshold float64) (Alignment, error) {
	asc := sortedLengths(lengths)
	if len(asc) == 0 || !snap.Complete(asc) {
		return Alignment{}, ErrInsufficientData
	}

	res := Alignment{
		Ordering:      ordering(snap, asc),
		PricePosition: pricePosition(snap, asc, price),
		CurrentOrder:  currentOrder(snap, asc),
		Distances:     distances(snap, asc),
	}

	values := make([]float64, 0, len(asc))
	for _, l := range asc {
		values = append(values, snap[l])
	}
	minV, maxV := slices.Min(values), slices.Max(values)
	if minV > 0 {
		res.CompressionPct = (maxV - minV) / minV * 100
		res.Compressed = res.CompressionPct < compressionThreshold
	}
	return res, nil
}

// ordering: 短周期在上且逐级递减为多头排列, 反之为空头排列. Ties are neither.
func ordering(snap Snapshot, asc []int) Ordering {
	if len(asc) < 2 {
		return OrderingNeither
	}
	bullish, bearish := true, true
	for i := 1; i < len(asc); i++ {
		prev, cur := snap[asc[i-1]], snap[asc[i]]
		if !(prev > cur) {
			bullish = false
		}
		if !(prev < cur) {
			bearish = false
		}
	}
	switch {
	case bullish:
		return OrderingBullish
	case bearish:
		return OrderingBearish
	default:
		return OrderingNeither
	}
}

func pricePosition(snap Snapshot, asc []int, price float64) PricePosition {
	above, below := true, true
	for _, l := range asc {
		if !(price > snap[l]) {
			above = false
		}
		if !(price < snap[l]) {
			below = false
		}
	}
	switch {
	case above:
		return AboveAll
	case below:
		return BelowAll
	default:
		return Mixed
	}
}

func currentOrder(snap Snapshot, asc []int) []int {
	order := slices.Clone(asc)
	slices.SortStableFunc(order, func(a, b int) int {
		switch {
		case snap[a] > snap[b]:
			return -1
		case snap[a] < snap[b]:
			return 1
		default:
			return 0
		}
	})
	return order
}

func distances(snap Snapshot, asc []int) map[string]float64 {
	res := make(map[string]float64, len(asc))
	for i := 0; i+1 < len(asc); i++ {
		a, b := snap[asc[i]], snap[asc[i+1]]
		if b == 0 {
			continue
		}
		d := (a - b) / b * 100
		if d < 0 {
			d = -d
		}
		res[fmt.Sprintf("MA%d_MA%d", asc[i], asc[i+1])] = d
	}
	return res
}
