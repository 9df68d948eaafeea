package game

import "time"

// Input is a column press at a point of the song.
type Input struct {
	Index   int
	HitTime time.Duration
}
