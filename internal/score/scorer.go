package score

import (
	"time"

	"git.lost.host/meutraa/beatlane/internal/game"
	"github.com/google/uuid"
)

type Scorer interface {
	Init(path string) error
	Deinit()

	// Save the inputs of this performance
	Save(chart *game.Chart, inputs []game.Input, settings Settings) (uuid.UUID, error)

	// Load up previous performances of the chart
	Load(chart *game.Chart) ([]History, error)

	// Score replays a performance
	Score(chart *game.Chart, history *History) (Score, error)
}

// Settings are the options a performance was played with, needed to replay it.
type Settings struct {
	Rate     float64
	Travel   time.Duration
	Deadzone float64
}

type History struct {
	ID     uuid.UUID
	Sum    string
	Played time.Time
	Inputs []game.Input
	Settings
}

type Score struct {
	Points     int
	MissCount  int
	TotalError time.Duration
}
