package field

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"sort"
	"time"

	"git.lost.host/meutraa/beatlane/internal/game"
	"github.com/go-gl/mathgl/mgl64"
)

var ErrUnknownColumn = errors.New("unknown column")

type Config struct {
	Columns  int
	Travel   time.Duration // How long a beat takes from the top row to the bar
	Deadzone float64       // Accepted |1 - progress| around the arrival
	Rate     float64       // Playback rate, note times are divided by it
	Start    time.Duration // Elapsed time of the first tick, negative for a lead in

	// Spawn geometry, in screen coordinates
	TopRow, BarRow float64
	ColumnX        []float64

	Judgements []game.Judgement
	Logger     *log.Logger
}

// Live is a beat on the field with the note it travels for.
type Live struct {
	Beat   *game.Beat
	Note   *game.Note
	Column int
}

// Event is a resolved beat. Offset is the hit time minus the ideal arrival,
// negative when early.
type Event struct {
	Column   int
	Note     *game.Note
	Progress float64
	Offset   time.Duration
	Tier     int
}

// Frame is what happened during one Tick.
type Frame struct {
	Hits   []Event
	Misses []Event
	Empty  []int // Columns pressed with nothing in the window
}

// Field owns one beat per note of a chart, spawns them on time and drives
// them every tick.
type Field struct {
	cfg    Config
	chart  *game.Chart
	scorer game.ScoreReporter
	logger *log.Logger

	lanes   [][]*Live
	next    int // Index of the next note to spawn
	first   int // Index of the first unjudged note
	elapsed time.Duration
	pending []int
	inputs  []game.Input
}

func validate(cfg *Config) error {
	if cfg.Columns <= 0 {
		return fmt.Errorf("%w: %v columns", game.ErrInvalidConfiguration, cfg.Columns)
	}
	if cfg.ColumnX == nil {
		cfg.ColumnX = make([]float64, cfg.Columns)
		for i := range cfg.ColumnX {
			cfg.ColumnX[i] = float64(i)
		}
	}
	if len(cfg.ColumnX) != cfg.Columns {
		return fmt.Errorf("%w: %v column positions for %v columns", game.ErrInvalidConfiguration, len(cfg.ColumnX), cfg.Columns)
	}
	if cfg.Travel <= 0 {
		return fmt.Errorf("%w: travel duration %v", game.ErrInvalidConfiguration, cfg.Travel)
	}
	if !game.ValidDeadzone(cfg.Deadzone) {
		return fmt.Errorf("%w: deadzone %v outside [0, 1)", game.ErrInvalidConfiguration, cfg.Deadzone)
	}
	if cfg.Rate <= 0 || math.IsInf(cfg.Rate, 0) || math.IsNaN(cfg.Rate) {
		return fmt.Errorf("%w: rate %v", game.ErrInvalidConfiguration, cfg.Rate)
	}
	if cfg.TopRow == cfg.BarRow {
		return fmt.Errorf("%w: beats spawn on the hit bar", game.ErrInvalidConfiguration)
	}
	return nil
}

func New(cfg Config, chart *game.Chart, scorer game.ScoreReporter) (*Field, error) {
	if err := validate(&cfg); nil != err {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	sort.SliceStable(chart.Notes, func(i, j int) bool {
		return chart.Notes[i].Time < chart.Notes[j].Time
	})
	chart.SetActive(0, 0)

	return &Field{
		cfg:     cfg,
		chart:   chart,
		scorer:  scorer,
		logger:  logger,
		lanes:   make([][]*Live, cfg.Columns),
		elapsed: cfg.Start,
	}, nil
}

// Press queues a press of a column, judged on the next Tick.
func (f *Field) Press(column int) error {
	if column < 0 || column >= f.cfg.Columns {
		return fmt.Errorf("%w: %v", ErrUnknownColumn, column)
	}
	f.pending = append(f.pending, column)
	return nil
}

// The time the beat for a note has to leave the top row to arrive on time
func (f *Field) spawnTime(note *game.Note) time.Duration {
	return time.Duration(math.Round(float64(note.Time)/f.cfg.Rate)) - f.cfg.Travel
}

func (f *Field) spawn() {
	for ; f.next < len(f.chart.Notes); f.next++ {
		note := f.chart.Notes[f.next]
		at := f.spawnTime(note)
		if at > f.elapsed {
			return
		}
		if note.IsMine {
			continue
		}
		col := int(note.Index)
		if col >= f.cfg.Columns {
			f.logger.Println("note in unknown column", col)
			continue
		}

		x := f.cfg.ColumnX[col]
		beat := game.NewBeat(note, f.scorer)
		if err := beat.Initialize(
			mgl64.Vec3{x, f.cfg.TopRow, 0},
			mgl64.Vec3{x, f.cfg.BarRow, 0},
			f.cfg.Travel,
		); nil != err {
			f.logger.Println("unable to spawn beat:", err)
			continue
		}
		beat.Release = func() {
			f.logger.Printf("column %v beat done after %v\n", col, beat.Lifetime())
		}
		// Catch up on the part of the journey that fell inside this tick
		beat.Advance(f.elapsed - at)
		f.lanes[col] = append(f.lanes[col], &Live{Beat: beat, Note: note, Column: col})
	}
}

func (f *Field) event(l *Live) Event {
	p := l.Beat.Progress()
	tier := len(f.cfg.Judgements) - 1
	if l.Beat.Resolution() == game.ResolvedHit {
		tier = f.hitTier(p)
	}
	return Event{
		Column:   l.Column,
		Note:     l.Note,
		Progress: p,
		Offset:   time.Duration(math.Round((p - 1) * float64(f.cfg.Travel))),
		Tier:     tier,
	}
}

// The tier of a beat accepted as a hit. A hit on the edge of the window can
// fall outside the widest tier by rounding, and lands in that tier.
func (f *Field) hitTier(progress float64) int {
	tier := game.Judge(progress, f.cfg.Deadzone, f.cfg.Judgements)
	if tier < 0 && len(f.cfg.Judgements) > 1 {
		tier = len(f.cfg.Judgements) - 2
	}
	return tier
}

// Judge the oldest beat of the column that is inside the window
func (f *Field) judge(column int) (Event, bool) {
	for _, l := range f.lanes[column] {
		if l.Beat.AttemptJudgment(f.cfg.Deadzone) == game.Hit {
			l.Note.HitTime = f.elapsed
			return f.event(l), true
		}
	}
	return Event{}, false
}

// Dispose and drop every resolved beat, and slide the active window.
func (f *Field) sweep() {
	for col, lane := range f.lanes {
		kept := lane[:0]
		for _, l := range lane {
			if l.Beat.State() == game.Resolved {
				l.Beat.Dispose()
				continue
			}
			kept = append(kept, l)
		}
		for i := len(kept); i < len(lane); i++ {
			lane[i] = nil
		}
		f.lanes[col] = kept
	}

	for f.first < f.next {
		n := f.chart.Notes[f.first]
		if !n.IsMine && !n.Judged() && int(n.Index) < f.cfg.Columns {
			break
		}
		f.first++
	}
	f.chart.SetActive(f.first, f.next)
}

// Tick moves the field forward by dt. Every beat is advanced, then judged
// against the presses queued since the last tick, then checked for expiry.
func (f *Field) Tick(dt time.Duration) Frame {
	var frame Frame
	if dt < 0 {
		dt = 0
	}
	f.elapsed += dt

	for _, lane := range f.lanes {
		for _, l := range lane {
			l.Beat.Advance(dt)
		}
	}
	f.spawn()

	for _, col := range f.pending {
		f.inputs = append(f.inputs, game.Input{Index: col, HitTime: f.elapsed})
		if e, ok := f.judge(col); ok {
			frame.Hits = append(frame.Hits, e)
		} else {
			frame.Empty = append(frame.Empty, col)
		}
	}
	f.pending = f.pending[:0]

	limit := 1 + f.cfg.Deadzone
	for _, lane := range f.lanes {
		for _, l := range lane {
			if l.Beat.CheckExpiry(limit) {
				l.Note.MissTime = f.elapsed
				frame.Misses = append(frame.Misses, f.event(l))
			}
		}
	}

	f.sweep()
	return frame
}

// Beats returns the live beats, oldest first within each column.
func (f *Field) Beats() []*Live {
	live := []*Live{}
	for _, lane := range f.lanes {
		live = append(live, lane...)
	}
	return live
}

// Done reports whether every note has been spawned and resolved.
func (f *Field) Done() bool {
	if f.next < len(f.chart.Notes) {
		return false
	}
	for _, lane := range f.lanes {
		if len(lane) != 0 {
			return false
		}
	}
	return true
}

func (f *Field) Elapsed() time.Duration {
	return f.elapsed
}

// Inputs returns every press judged so far, with the time it was judged at.
func (f *Field) Inputs() []game.Input {
	return f.inputs
}

func (f *Field) Config() Config {
	return f.cfg
}
