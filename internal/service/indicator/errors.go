package indicator

import "github.com/KNICEX/signal-monitor/internal/service/exchange"

// ErrInsufficientData is shared with the exchange package so callers can
// test for a single sentinel.
var ErrInsufficientData = exchange.ErrInsufficientData
