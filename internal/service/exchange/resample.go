package exchange

import (
	"time"

	"github.com/shopspring/decimal"
)

// Resample aggregates finer bars into buckets of target, aligned to UTC
// multiples of the target duration. Empty buckets are dropped.
// open=first high=max low=min close=last volume=sum
// A bucket closes at its boundary or when its last source bar closes,
// whichever is later, so a forming source bar keeps the bucket open.
func Resample(kLines []Kline, target Interval) []Kline {
	d := target.Duration()
	if d == 0 || len(kLines) == 0 {
		return nil
	}

	res := make([]Kline, 0, len(kLines))
	var cur *Kline
	for _, k := range kLines {
		start := k.OpenTime.UTC().Truncate(d)
		if cur == nil || !cur.OpenTime.Equal(start) {
			if cur != nil {
				res = append(res, *cur)
			}
			cur = &Kline{
				OpenTime:  start,
				CloseTime: laterOf(start.Add(d-time.Millisecond), k.CloseTime),
				Open:      k.Open,
				Close:     k.Close,
				High:      k.High,
				Low:       k.Low,
				Volume:    k.Volume,
			}
			continue
		}
		cur.High = decimal.Max(cur.High, k.High)
		cur.Low = decimal.Min(cur.Low, k.Low)
		cur.Close = k.Close
		cur.Volume = cur.Volume.Add(k.Volume)
		cur.CloseTime = laterOf(cur.CloseTime, k.CloseTime)
	}
	if cur != nil {
		res = append(res, *cur)
	}
	return res
}

func laterOf(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
