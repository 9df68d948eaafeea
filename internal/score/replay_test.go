package score

import (
	"testing"
	"time"

	"git.lost.host/meutraa/beatlane/internal/game"
	"git.lost.host/meutraa/beatlane/internal/testdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var judgements = []game.Judgement{
	{Window: 0.25, Name: "Exact"},
	{Window: 1, Name: "Good"},
	{Window: -1, Name: "Miss"},
}

var settings = Settings{Rate: 1, Travel: time.Second, Deadzone: 0.1}

func replayChart() *game.Chart {
	return &game.Chart{
		Difficulty: game.Difficulty{Name: "Test", NKeys: 4, Section: "0000\n1000\n0100\n"},
		Notes: []*game.Note{
			{Index: 0, Time: time.Second},
			{Index: 1, Time: 2 * time.Second},
			{Index: 3, Time: 2 * time.Second, IsMine: true},
		},
	}
}

func TestReplay(t *testing.T) {
	tests := map[string]struct {
		inputs         []game.Input
		points, misses int
	}{
		"perfect": {
			[]game.Input{{Index: 0, HitTime: time.Second}, {Index: 1, HitTime: 2 * time.Second}},
			2, 0,
		},
		"out of order": {
			[]game.Input{{Index: 1, HitTime: 2 * time.Second}, {Index: 0, HitTime: 1050 * time.Millisecond}},
			2, 0,
		},
		"one": {
			[]game.Input{{Index: 0, HitTime: time.Second}},
			1, 1,
		},
		"early": {
			[]game.Input{{Index: 0, HitTime: 500 * time.Millisecond}},
			0, 2,
		},
		"wrong column": {
			[]game.Input{{Index: 2, HitTime: time.Second}, {Index: 9, HitTime: time.Second}},
			0, 2,
		},
		"nothing": {nil, 0, 2},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			chart := replayChart()
			tally, err := Replay(chart, test.inputs, ReplayConfig(chart, settings, judgements), DefaultStep)
			require.NoError(t, err)
			assert.Equal(t, test.points, tally.Points)
			assert.Equal(t, test.misses, tally.Misses)

			for _, n := range chart.Notes {
				assert.False(t, n.Judged(), "replay must not touch the chart")
			}
		})
	}
}

func TestReplayInvalidSettings(t *testing.T) {
	chart := replayChart()
	_, err := Replay(chart, nil, ReplayConfig(chart, Settings{Rate: 1, Travel: 0, Deadzone: 0.1}, judgements), DefaultStep)
	assert.ErrorIs(t, err, game.ErrInvalidConfiguration)
}

func TestReplayConfigColumns(t *testing.T) {
	chart := &game.Chart{Notes: []*game.Note{{Index: 5}}}
	cfg := ReplayConfig(chart, settings, judgements)
	assert.Equal(t, 6, cfg.Columns)

	cfg = ReplayConfig(replayChart(), settings, judgements)
	assert.Equal(t, 4, cfg.Columns)
}

func TestReplayFixturePerfect(t *testing.T) {
	chart, err := testdata.GetChart()
	require.NoError(t, err)

	inputs := []game.Input{}
	for _, n := range chart.Notes {
		if !n.IsMine {
			inputs = append(inputs, game.Input{Index: int(n.Index), HitTime: n.Time})
		}
	}

	tally, err := Replay(chart, inputs, ReplayConfig(chart, settings, judgements), DefaultStep)
	require.NoError(t, err)
	assert.Equal(t, int(chart.NoteCount), tally.Points)
	assert.Equal(t, 0, tally.Misses)
	assert.Equal(t, []int{5, 0, 0}, tally.Counts)
}
