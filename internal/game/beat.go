package game

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidConfiguration is returned when a beat cannot travel with the
// parameters it was given.
var ErrInvalidConfiguration = errors.New("invalid beat configuration")

type State uint8

const (
	Uninitialized State = iota
	Traveling
	Resolved
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Traveling:
		return "traveling"
	case Resolved:
		return "resolved"
	}
	return "unknown"
}

// Resolution is how a resolved beat ended.
type Resolution uint8

const (
	Unresolved Resolution = iota
	ResolvedHit
	ResolvedExpired
)

// Judgment is the outcome of a single hit attempt.
type Judgment uint8

const (
	NoJudgment Judgment = iota
	Hit
)

// ScoreReporter receives score deltas from beats. Beats never read score back.
type ScoreReporter interface {
	ReportScore(delta int)
}

// MissReporter is implemented by score reporters that want to hear about
// expired beats.
type MissReporter interface {
	ReportMiss()
}

// NoteMarker receives the judged hit flag of the note a beat travels for.
type NoteMarker interface {
	MarkHit(hit bool)
}

// Beat travels from Start to End at a constant speed and judges hit attempts
// against a deadzone around its arrival.
type Beat struct {
	note   NoteMarker
	scorer ScoreReporter

	// Release is called once on Dispose
	Release func()

	start, end    mgl64.Vec3
	position      mgl64.Vec3
	duration      time.Duration
	speed         float64 // distance per second
	journeyLength float64
	elapsed       float64 // distance travelled, elapsed seconds scaled by speed
	progress      float64
	lifetime      time.Duration

	state      State
	resolution Resolution
	disposed   bool
}

func NewBeat(note NoteMarker, scorer ScoreReporter) *Beat {
	return &Beat{note: note, scorer: scorer}
}

func finite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Initialize derives the speed from the gap and the desired travel duration
// and starts the journey.
func (b *Beat) Initialize(start, end mgl64.Vec3, duration time.Duration) error {
	if b.state != Uninitialized || b.disposed {
		return fmt.Errorf("%w: beat is %v", ErrInvalidConfiguration, b.state)
	}
	if duration <= 0 {
		return fmt.Errorf("%w: travel duration %v is not positive", ErrInvalidConfiguration, duration)
	}
	if !finite(start) || !finite(end) {
		return fmt.Errorf("%w: non-finite endpoint %v -> %v", ErrInvalidConfiguration, start, end)
	}
	length := end.Sub(start).Len()
	if length == 0 {
		return fmt.Errorf("%w: start and end are both %v", ErrInvalidConfiguration, start)
	}

	b.start, b.end = start, end
	b.position = start
	b.duration = duration
	b.journeyLength = length
	b.speed = length / duration.Seconds()
	b.elapsed = 0
	b.progress = 0
	b.lifetime = 0
	b.state = Traveling
	return nil
}

func (b *Beat) traveling() bool {
	return b.state == Traveling && !b.disposed
}

// Advance moves the beat along by dt. The position never passes End even
// though the progress keeps growing past 1.
func (b *Beat) Advance(dt time.Duration) {
	if !b.traveling() || dt < 0 {
		return
	}
	b.elapsed += dt.Seconds() * b.speed
	b.progress = b.elapsed / b.journeyLength
	b.lifetime += dt

	t := mgl64.Clamp(b.progress, 0, 1)
	if t == 1 {
		b.position = b.end
	} else {
		b.position = b.start.Add(b.end.Sub(b.start).Mul(t))
	}
}

// AttemptJudgment scores a hit when the progress is within
// [1-deadzone, 1+deadzone]. A failed attempt changes nothing.
func (b *Beat) AttemptJudgment(deadzone float64) Judgment {
	if !b.traveling() || !ValidDeadzone(deadzone) {
		return NoJudgment
	}
	if b.progress < 1-deadzone || b.progress > 1+deadzone {
		return NoJudgment
	}
	b.state = Resolved
	b.resolution = ResolvedHit
	if b.note != nil {
		b.note.MarkHit(true)
	}
	if b.scorer != nil {
		b.scorer.ReportScore(1)
	}
	return Hit
}

// CheckExpiry resolves the beat as expired once its progress is past
// maxProgress, and reports whether it did.
func (b *Beat) CheckExpiry(maxProgress float64) bool {
	if !b.traveling() || b.progress <= maxProgress {
		return false
	}
	b.state = Resolved
	b.resolution = ResolvedExpired
	if b.note != nil {
		b.note.MarkHit(false)
	}
	if mr, ok := b.scorer.(MissReporter); ok {
		mr.ReportMiss()
	}
	return true
}

func (b *Beat) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	if b.Release != nil {
		b.Release()
	}
}

func ValidDeadzone(deadzone float64) bool {
	return deadzone >= 0 && deadzone < 1
}

func (b *Beat) State() State { return b.state }
func (b *Beat) Resolution() Resolution { return b.resolution }
func (b *Beat) Progress() float64 { return b.progress }
func (b *Beat) Position() mgl64.Vec3 { return b.position }
func (b *Beat) Speed() float64 { return b.speed }
func (b *Beat) JourneyLength() float64 { return b.journeyLength }
func (b *Beat) Duration() time.Duration { return b.duration }
func (b *Beat) Lifetime() time.Duration { return b.lifetime }
func (b *Beat) Disposed() bool { return b.disposed }
func (b *Beat) Note() NoteMarker { return b.note }
func (b *Beat) Endpoints() (s, e mgl64.Vec3) { return b.start, b.end }
