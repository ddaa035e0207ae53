package indicator

import (
	"fmt"
	"slices"
)

// Priority is informational only and never changes what is emitted.
type Priority struct {
	Tier   string `json:"tier"`
	Rating int    `json:"rating"`
	Label  string `json:"label"`
}

const (
	TierMinor    = "minor"
	TierModerate = "moderate"
	TierMajor    = "major"
	TierCritical = "critical"
)

var pairPriorities = map[Pair]Priority{
	// 短周期系统
	{Fast: 13, Slow: 25}:   {Tier: TierMinor, Rating: 1, Label: "very short-term momentum"},
	{Fast: 25, Slow: 32}:   {Tier: TierMinor, Rating: 1, Label: "short-term momentum"},
	{Fast: 32, Slow: 50}:   {Tier: TierModerate, Rating: 2, Label: "short-term trend"},
	{Fast: 50, Slow: 100}:  {Tier: TierModerate, Rating: 3, Label: "medium-term trend"},
	{Fast: 50, Slow: 200}:  {Tier: TierCritical, Rating: 5, Label: "golden/death cross"},
	{Fast: 100, Slow: 200}: {Tier: TierMajor, Rating: 4, Label: "long-term trend"},
	{Fast: 200, Slow: 300}: {Tier: TierMajor, Rating: 4, Label: "secular trend"},
	// 长周期系统
	{Fast: 112, Slow: 336}: {Tier: TierModerate, Rating: 3, Label: "long-horizon momentum"},
	{Fast: 336, Slow: 375}: {Tier: TierModerate, Rating: 3, Label: "long-horizon trend"},
	{Fast: 375, Slow: 448}: {Tier: TierMajor, Rating: 4, Label: "long-horizon structure"},
	{Fast: 448, Slow: 750}: {Tier: TierCritical, Rating: 5, Label: "long-horizon anchor"},
}

func PairPriority(p Pair) Priority {
	if pr, ok := pairPriorities[p]; ok {
		return pr
	}
	return Priority{Tier: TierMinor, Rating: 1, Label: fmt.Sprintf("MA%d/MA%d", p.Fast, p.Slow)}
}

// MultiCrossPriority rates a composite crossing. Crossing the system's
// longest length (its anchor) rates highest.
func MultiCrossPriority(mc MultiCross, lengths []int) Priority {
	if len(lengths) > 0 && slices.Contains(mc.Slows, slices.Max(lengths)) {
		return Priority{Tier: TierCritical, Rating: 5, Label: fmt.Sprintf("multi-cross of anchor MA%d", slices.Max(lengths))}
	}
	return Priority{Tier: TierMajor, Rating: 4, Label: fmt.Sprintf("MA%d multi-cross", mc.Fast)}
}
