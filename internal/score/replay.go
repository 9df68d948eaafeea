package score

import (
	"io"
	"log"
	"sort"
	"time"

	"git.lost.host/meutraa/beatlane/internal/field"
	"git.lost.host/meutraa/beatlane/internal/game"
)

const DefaultStep = time.Millisecond

// ReplayConfig is the field a recorded performance is replayed on. The
// geometry does not matter for judgement so a unit lane is used.
func ReplayConfig(chart *game.Chart, settings Settings, judgements []game.Judgement) field.Config {
	columns := int(chart.Difficulty.NKeys)
	for _, n := range chart.Notes {
		if int(n.Index)+1 > columns {
			columns = int(n.Index) + 1
		}
	}
	return field.Config{
		Columns:    columns,
		Travel:     settings.Travel,
		Deadzone:   settings.Deadzone,
		Rate:       settings.Rate,
		TopRow:     0,
		BarRow:     1,
		Judgements: judgements,
	}
}

// Replay plays the inputs back against a fresh copy of the chart, ticking
// by step and landing a tick on every input time.
func Replay(chart *game.Chart, inputs []game.Input, cfg field.Config, step time.Duration) (*Tally, error) {
	ins := make([]game.Input, len(inputs))
	copy(ins, inputs)
	sort.SliceStable(ins, func(i, j int) bool {
		return ins[i].HitTime < ins[j].HitTime
	})
	if len(ins) > 0 && ins[0].HitTime < cfg.Start {
		cfg.Start = ins[0].HitTime
	}

	if cfg.Logger == nil {
		cfg.Logger = log.New(io.Discard, "", 0)
	}
	logger := cfg.Logger

	t := NewTally(len(cfg.Judgements), nil)
	f, err := field.New(cfg, chart.Clone(), t)
	if nil != err {
		return nil, err
	}

	for _, in := range ins {
		for f.Elapsed()+step < in.HitTime {
			t.Record(f.Tick(step))
		}
		if err := f.Press(in.Index); nil != err {
			logger.Println("skipping replayed input", err)
		}
		t.Record(f.Tick(in.HitTime - f.Elapsed()))
	}
	for !f.Done() {
		t.Record(f.Tick(step))
	}
	return t, nil
}
