package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var shortSystem = []int{13, 25, 32, 50, 100, 200, 300}

func TestAnalyze(t *testing.T) {
	testCases := []struct {
		name       string
		snap       Snapshot
		lengths    []int
		price      float64
		wantOrder  Ordering
		wantPos    PricePosition
		compressed bool
	}{
		{
			name:      "bullish",
			snap:      Snapshot{13: 110, 25: 105, 32: 100},
			lengths:   []int{13, 25, 32},
			price:     120,
			wantOrder: OrderingBullish,
			wantPos:   AboveAll,
		},
		{
			name:      "bearish",
			snap:      Snapshot{13: 90, 25: 95, 32: 100},
			lengths:   []int{13, 25, 32},
			price:     80,
			wantOrder: OrderingBearish,
			wantPos:   BelowAll,
		},
		{
			name:      "tie is neither",
			snap:      Snapshot{13: 100, 25: 100, 32: 90},
			lengths:   []int{13, 25, 32},
			price:     100,
			wantOrder: OrderingNeither,
			wantPos:   Mixed,
		},
		{
			name:       "compressed",
			snap:       Snapshot{13: 100, 25: 101, 32: 102},
			lengths:    []int{13, 25, 32},
			price:      101,
			wantOrder:  OrderingBearish,
			wantPos:    Mixed,
			compressed: true,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Analyze(tc.snap, tc.lengths, tc.price, DefaultCompressionThreshold)
			require.NoError(t, err)
			assert.Equal(t, tc.wantOrder, res.Ordering)
			assert.Equal(t, tc.wantPos, res.PricePosition)
			assert.Equal(t, tc.compressed, res.Compressed)
		})
	}
}

func TestAnalyze_InputOrderIrrelevant(t *testing.T) {
	snap := Snapshot{13: 110, 25: 105, 32: 100, 50: 95}
	a, err := Analyze(snap, []int{13, 25, 32, 50}, 120, 3)
	require.NoError(t, err)
	b, err := Analyze(snap, []int{50, 13, 32, 25}, 120, 3)
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, []int{13, 25, 32, 50}, a.CurrentOrder)
}

func TestAnalyze_Compression(t *testing.T) {
	res, err := Analyze(Snapshot{13: 103, 25: 100}, []int{13, 25}, 101, 3)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, res.CompressionPct, 1e-9)
	// 恰好等于阈值不算压缩
	assert.False(t, res.Compressed)
	assert.InDelta(t, 3.0, res.Distances["MA13_MA25"], 1e-9)

	res, err = Analyze(Snapshot{13: 0, 25: 1}, []int{13, 25}, 1, 3)
	require.NoError(t, err)
	assert.Zero(t, res.CompressionPct)
	assert.False(t, res.Compressed)
}

func TestAnalyze_InsufficientData(t *testing.T) {
	_, err := Analyze(Snapshot{13: 1, 25: 2}, []int{13, 25, 32}, 1, 3)
	assert.ErrorIs(t, err, ErrInsufficientData)

	_, err = Analyze(Snapshot{}, nil, 1, 3)
	assert.ErrorIs(t, err, ErrInsufficientData)
}

func TestAnalyze_RisingSeriesIsBullish(t *testing.T) {
	closes := ramp(400, 100, 1)
	m := SMA(closes, shortSystem...)

	res, err := Analyze(m.LatestSnapshot(), shortSystem, closes[len(closes)-1], DefaultCompressionThreshold)
	require.NoError(t, err)
	assert.Equal(t, OrderingBullish, res.Ordering)
	assert.Equal(t, AboveAll, res.PricePosition)
	assert.Equal(t, shortSystem, res.CurrentOrder)
}
