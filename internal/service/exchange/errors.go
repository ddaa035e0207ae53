package exchange

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInsufficientData = errors.New("insufficient data")
	ErrUnknownSymbol    = errors.New("unknown symbol")
)

// FetchError wraps any failure to obtain bars for one instrument. The scan
// treats it as "skip this unit for the current cycle".
type FetchError struct {
	Instrument Instrument
	Interval   Interval
	Err        error
}

func NewFetchError(req GetKlinesReq, err error) *FetchError {
	return &FetchError{
		Instrument: req.Instrument,
		Interval:   req.Interval,
		Err:        err,
	}
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s %s: %v", e.Instrument.Symbol, e.Interval, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Transient is always true: timeouts, rate limits and unknown symbols are all
// retried on the next cycle.
func (e *FetchError) Transient() bool {
	return true
}

func (e *FetchError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}
