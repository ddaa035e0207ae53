package monitor

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/KNICEX/signal-monitor/internal/service/exchange"
	"github.com/KNICEX/signal-monitor/internal/service/indicator"
	"github.com/KNICEX/signal-monitor/internal/service/notification"
	"github.com/KNICEX/signal-monitor/pkg/decimalx"
	"github.com/samber/lo"
)

type style struct {
	emoji string
	title string
	color int
}

var kindStyles = map[Kind]style{
	KindGoldenCross:      {emoji: "🟢", title: "GOLDEN CROSS", color: 0x00FF00},
	KindDeathCross:       {emoji: "🔴", title: "DEATH CROSS", color: 0xFF0000},
	KindBullishCross:     {emoji: "🔼", title: "BULLISH CROSS", color: 0x90EE90},
	KindBearishCross:     {emoji: "🔽", title: "BEARISH CROSS", color: 0xFFB6C1},
	KindBullishAlignment: {emoji: "🟢", title: "FULL BULLISH ALIGNMENT", color: 0x00FF00},
	KindBearishAlignment: {emoji: "🔴", title: "FULL BEARISH ALIGNMENT", color: 0xFF0000},
	KindCompression:      {emoji: "🔥", title: "MA COMPRESSION", color: 0xFFA500},
}

var tierStyles = map[indicator.Tier]style{
	indicator.TierVolModerate: {emoji: "⚠️", title: "MODERATE", color: 0xFFA500},
	indicator.TierVolHigh:     {emoji: "🔥", title: "HIGH", color: 0xFF4500},
	indicator.TierVolCritical: {emoji: "🚨", title: "CRITICAL", color: 0xFF0000},
}

const separator = "━━━━━━━━━━━━━━━━━━━━━━"

// VenueURL 交易所/行情页面
func VenueURL(ins exchange.Instrument) string {
	if ins.Class == exchange.Crypto {
		return "https://www.binance.com/en/trade/" + ins.Symbol
	}
	return "https://finance.yahoo.com/quote/" + url.PathEscape(ins.Symbol)
}

func money(f float64) string {
	return "$" + decimalx.GroupedFloat(f, 2)
}

func styleOf(ev Event) style {
	switch ev.Kind {
	case KindMultiCross:
		if ev.Direction == indicator.CrossUp {
			return style{emoji: "⚡", title: "MULTI CROSS UP", color: 0x2ECC71}
		}
		return style{emoji: "⚡", title: "MULTI CROSS DOWN", color: 0xE74C3C}
	case KindVolumeSpike:
		s := tierStyles[ev.Tier]
		s.title = "VOLUME SPIKE"
		return s
	default:
		return kindStyles[ev.Kind]
	}
}

// FormatMessage renders an event for the notification sinks.
func FormatMessage(ev Event) notification.Message {
	st := styleOf(ev)
	msg := notification.Message{
		Title:     fmt.Sprintf("%s %s - %s", st.emoji, st.title, ev.Instrument.DisplayName()),
		Color:     st.color,
		Timestamp: ev.BarTime,
	}
	if ev.Kind == KindVolumeSpike {
		msg.URL = VenueURL(ev.Instrument)
		msg.Fields = volumeFields(ev)
		msg.Footer = fmt.Sprintf("%s • %s alert", strings.ToUpper(string(ev.Instrument.Class)), tierStyles[ev.Tier].title)
		return msg
	}

	situation := fmt.Sprintf("**Symbol:** %s\n**Price:** %s\n**Timeframe:** %s\n**System:** %s",
		ev.Instrument.DisplayName(), money(ev.Price), strings.ToUpper(string(ev.Timeframe)), ev.System)
	msg.Fields = []notification.Field{
		{Name: "📊 SITUATION", Value: situation},
		{Name: separator, Value: "** **"},
	}
	if detail, ok := detailField(ev); ok {
		msg.Fields = append(msg.Fields, detail)
	}
	if avg := averagesText(ev.Averages, money); avg != "" {
		msg.Fields = append(msg.Fields,
			notification.Field{Name: separator, Value: "** **"},
			notification.Field{Name: "📈 MOVING AVERAGES", Value: avg},
		)
	}
	msg.Footer = fmt.Sprintf("%s • %s • %s", strings.ToUpper(string(ev.Timeframe)), ev.System, ev.BarTime.UTC().Format("2006-01-02 15:04"))
	return msg
}

func detailField(ev Event) (notification.Field, bool) {
	switch ev.Kind {
	case KindGoldenCross, KindDeathCross, KindBullishCross, KindBearishCross:
		v := fmt.Sprintf("**MA%d** crossed %s **MA%d**", ev.Fast, directionWord(ev.Direction), ev.Slow)
		if ev.Priority != nil {
			v += fmt.Sprintf("\n└ %s (%s)", ev.Priority.Label, strings.Repeat("★", ev.Priority.Rating))
		}
		return notification.Field{Name: "🔄 CROSSOVER", Value: v}, true
	case KindMultiCross:
		slows := strings.Join(lo.Map(ev.Slows, func(l int, _ int) string { return fmt.Sprintf("MA%d", l) }), ", ")
		v := fmt.Sprintf("**MA%d** crossed %s %d averages at once: %s", ev.Fast, directionWord(ev.Direction), len(ev.Slows), slows)
		if ev.Priority != nil {
			v += fmt.Sprintf("\n└ %s (%s)", ev.Priority.Label, strings.Repeat("★", ev.Priority.Rating))
		}
		return notification.Field{Name: "⚡ MULTI CROSS", Value: v}, true
	case KindCompression:
		return notification.Field{
			Name:  "📊 COMPRESSION",
			Value: fmt.Sprintf("Spread across all MAs: **%.2f%%**", ev.CompressionPct),
		}, true
	case KindBullishAlignment:
		return notification.Field{Name: "📐 ALIGNMENT", Value: "Every shorter MA is above every longer MA"}, true
	case KindBearishAlignment:
		return notification.Field{Name: "📐 ALIGNMENT", Value: "Every shorter MA is below every longer MA"}, true
	default:
		return notification.Field{}, false
	}
}

func directionWord(d indicator.Direction) string {
	if d == indicator.CrossUp {
		return "above"
	}
	return "below"
}

func averagesText(snap indicator.Snapshot, format func(float64) string) string {
	lengths := lo.Keys(map[int]float64(snap))
	slices.Sort(lengths)
	var sb strings.Builder
	for _, l := range lengths {
		fmt.Fprintf(&sb, "MA%d: `%s`\n", l, format(snap[l]))
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func volumeFields(ev Event) []notification.Field {
	r := ev.Volume
	vol := func(f float64) string { return decimalx.GroupedFloat(f, 0) }
	fields := []notification.Field{
		{Name: "📊 CURRENT", Value: fmt.Sprintf("**Volume:** %s\n**Price:** %s\n**Timeframe:** %s",
			vol(r.Current), money(ev.Price), strings.ToUpper(string(ev.Timeframe)))},
		{Name: separator, Value: "** **"},
		{Name: fmt.Sprintf("📈 SHORT TERM (MA%d)", r.Short), Value: fmt.Sprintf("**Average:** %s\n**Current:** %s\n**Change:** %+.1f%%",
			vol(r.ShortBaseline), vol(r.Current), r.ShortDeviation)},
	}
	long := "not enough history"
	if r.LongDefined {
		long = fmt.Sprintf("**Average:** %s\n**Current:** %s\n**Change:** %+.1f%%", vol(r.LongBaseline), vol(r.Current), r.LongDeviation)
	}
	fields = append(fields,
		notification.Field{Name: fmt.Sprintf("📉 LONG TERM (MA%d)", r.Long), Value: long},
		notification.Field{Name: separator, Value: "** **"},
		notification.Field{Name: "📊 VOLUME AVERAGES", Value: averagesText(r.Averages, vol)},
	)
	return fields
}
