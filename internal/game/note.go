package game

import (
	"time"
)

type Note struct {
	Index   uint8 // The chart column
	Denom   int   // The beat length, as a denominator, 4 = 1/4 beat
	IsMine  bool
	Time    time.Duration // The time the note should be hit
	TimeEnd time.Duration // The time a hold should be released, 0 for taps

	// This is state
	Hit      bool
	Miss     bool          // The beat for this note expired
	HitTime  time.Duration // When the note was hit
	MissTime time.Duration // When the beat expired
}

// MarkHit records the judgement of the beat travelling for this note.
func (note *Note) MarkHit(hit bool) {
	note.Hit = hit
	note.Miss = !hit
}

// Judged reports whether a beat already resolved this note.
func (note *Note) Judged() bool {
	return note.Hit || note.Miss
}

// Reset clears the state so a chart can be replayed.
func (note *Note) Reset() {
	note.Hit, note.Miss = false, false
	note.HitTime, note.MissTime = 0, 0
}
