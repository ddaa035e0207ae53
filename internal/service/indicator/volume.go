package indicator

import (
	"fmt"
	"slices"
)

type Tier string

const (
	TierNone        Tier = "none"
	TierVolModerate Tier = "moderate"
	TierVolHigh     Tier = "high"
	TierVolCritical Tier = "critical"
)

// VolumeLengths 成交量均线周期
var VolumeLengths = []int{13, 25, 32, 100, 200, 300}

// Thresholds are ascending deviation cutoffs in percent.
type Thresholds struct {
	Moderate float64
	High     float64
	Critical float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{Moderate: 150, High: 200, Critical: 300}
}

// SpikeTier returns the highest tier whose cutoff is met.
func SpikeTier(deviation float64, th Thresholds) Tier {
	switch {
	case deviation >= th.Critical:
		return TierVolCritical
	case deviation >= th.High:
		return TierVolHigh
	case deviation >= th.Moderate:
		return TierVolModerate
	default:
		return TierNone
	}
}

// Deviation is (current-baseline)/baseline in percent.
func Deviation(current, baseline float64) (float64, bool) {
	if baseline <= 0 {
		return 0, false
	}
	return (current - baseline) / baseline * 100, true
}

type VolumeReading struct {
	Current        float64  `json:"current"`
	Averages       Snapshot `json:"averages"`
	Short          int      `json:"short"`
	Long           int      `json:"long"`
	ShortBaseline  float64  `json:"short_baseline"`
	ShortDeviation float64  `json:"short_deviation"`
	// LongDefined is false when history is shorter than the long window.
	LongDefined   bool    `json:"long_defined"`
	LongBaseline  float64 `json:"long_baseline"`
	LongDeviation float64 `json:"long_deviation"`
	Tier          Tier    `json:"tier"`
}

// ReadVolume evaluates the last element of volumes, which must contain closed
// bars only, against the moving averages ending at that bar.
func ReadVolume(volumes []float64, lengths []int, short, long int, th Thresholds) (VolumeReading, error) {
	if !slices.Contains(lengths, short) || !slices.Contains(lengths, long) {
		return VolumeReading{}, fmt.Errorf("reference periods %d/%d not in %v", short, long, lengths)
	}
	if len(volumes) == 0 {
		return VolumeReading{}, ErrInsufficientData
	}

	m := SMA(volumes, lengths...)
	res := VolumeReading{
		Current:  volumes[len(volumes)-1],
		Averages: m.LatestSnapshot(),
		Short:    short,
		Long:     long,
		Tier:     TierNone,
	}

	shortBase, ok := res.Averages[short]
	if !ok {
		return res, ErrInsufficientData
	}
	res.ShortBaseline = shortBase
	if dev, ok := Deviation(res.Current, shortBase); ok {
		res.ShortDeviation = dev
		res.Tier = SpikeTier(dev, th)
	}

	if longBase, ok := res.Averages[long]; ok {
		res.LongBaseline = longBase
		res.LongDeviation, res.LongDefined = Deviation(res.Current, longBase)
	}
	return res, nil
}
