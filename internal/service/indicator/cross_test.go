package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrossAt(t *testing.T) {
	testCases := []struct {
		name                                 string
		prevFast, prevSlow, curFast, curSlow float64
		want                                 Direction
	}{
		{name: "up", prevFast: 9, prevSlow: 10, curFast: 11, curSlow: 10, want: CrossUp},
		{name: "up from equal", prevFast: 10, prevSlow: 10, curFast: 11, curSlow: 10, want: CrossUp},
		{name: "down", prevFast: 11, prevSlow: 10, curFast: 9, curSlow: 10, want: CrossDown},
		{name: "down from equal", prevFast: 10, prevSlow: 10, curFast: 9, curSlow: 10, want: CrossDown},
		{name: "touch is none", prevFast: 9, prevSlow: 10, curFast: 10, curSlow: 10, want: CrossNone},
		{name: "stays above", prevFast: 11, prevSlow: 10, curFast: 12, curSlow: 10, want: CrossNone},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, crossAt(tc.prevFast, tc.prevSlow, tc.curFast, tc.curSlow))
		})
	}
}

func TestDetectCross(t *testing.T) {
	// MA2: 2 -> 3.5, MA3: 2.33 -> 3.33
	m := SMA([]float64{3, 3, 1, 6}, 2, 3)
	assert.Equal(t, CrossUp, DetectCross(m, 2, 3))
	assert.Equal(t, CrossUp, DetectCross(m, 2, 3))

	// 窗口不足
	assert.Equal(t, CrossNone, DetectCross(SMA([]float64{3, 3, 1}, 2, 3), 2, 3))
	assert.Equal(t, CrossNone, DetectCross(m, 2, 50))
}

func TestDetectMultiCross(t *testing.T) {
	testCases := []struct {
		name   string
		values []float64
		want   []MultiCross
	}{
		{
			name:   "upward",
			values: []float64{3, 3, 3, 1, 6},
			want:   []MultiCross{{Fast: 2, Direction: CrossUp, Slows: []int{3, 4}}},
		},
		{
			name:   "downward",
			values: []float64{3, 3, 3, 5, 0},
			want:   []MultiCross{{Fast: 2, Direction: CrossDown, Slows: []int{3, 4}}},
		},
		{
			name:   "flat",
			values: []float64{3, 3, 3, 3, 3},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			m := SMA(tc.values, 2, 3, 4)
			assert.Equal(t, tc.want, DetectMultiCross(m, []int{4, 2, 3}))
		})
	}
}

func TestAdjacentPairs(t *testing.T) {
	assert.Equal(t, []Pair{{13, 25}, {25, 32}, {32, 50}}, AdjacentPairs([]int{50, 13, 32, 25}))
	assert.Empty(t, AdjacentPairs([]int{13}))
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 5, PairPriority(Pair{Fast: 50, Slow: 200}).Rating)
	assert.Equal(t, TierMinor, PairPriority(Pair{Fast: 7, Slow: 9}).Tier)

	mc := MultiCross{Fast: 13, Direction: CrossUp, Slows: []int{200, 300}}
	assert.Equal(t, TierCritical, MultiCrossPriority(mc, shortSystem).Tier)
	mc.Slows = []int{25, 32}
	assert.Equal(t, TierMajor, MultiCrossPriority(mc, shortSystem).Tier)
}
