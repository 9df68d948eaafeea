package game

import (
	"math"
)

// Judgement is a timing tier of a hit. Window is the largest accepted
// |1 - progress|, as a fraction of the deadzone.
type Judgement struct {
	Window float64
	Color  Color
	Name   string
}

type Color struct {
	R, G, B uint8
}

// Judge returns the index of the first tier whose window holds the offset
// of a hit from the ideal arrival. The last tier is the miss tier and is
// never returned.
func Judge(progress, deadzone float64, tiers []Judgement) int {
	d := math.Abs(1 - progress)
	for i := 0; i < len(tiers)-1; i++ {
		if d <= tiers[i].Window*deadzone {
			return i
		}
	}
	return -1
}
