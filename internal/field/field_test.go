package field

import (
	"testing"
	"time"

	"git.lost.host/meutraa/beatlane/internal/game"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tally struct {
	points, misses int
}

func (t *tally) ReportScore(delta int) { t.points += delta }
func (t *tally) ReportMiss() { t.misses++ }

var judgements = []game.Judgement{
	{Window: 0.25, Name: "Exact"},
	{Window: 1, Name: "Good"},
	{Window: -1, Name: "Miss"},
}

func testConfig() Config {
	return Config{
		Columns:    4,
		Travel:     time.Second,
		Deadzone:   0.1,
		Rate:       1,
		TopRow:     0,
		BarRow:     10,
		ColumnX:    []float64{2, 4, 6, 8},
		Judgements: judgements,
	}
}

func testChart() *game.Chart {
	return &game.Chart{Notes: []*game.Note{
		{Index: 0, Time: 1 * time.Second},
		{Index: 1, Time: 2 * time.Second},
		{Index: 2, Time: 2 * time.Second, IsMine: true},
		{Index: 3, Time: 3 * time.Second},
	}}
}

func newField(t *testing.T, cfg Config, chart *game.Chart) (*Field, *tally) {
	t.Helper()
	s := &tally{}
	f, err := New(cfg, chart, s)
	require.NoError(t, err)
	return f, s
}

func TestNewInvalid(t *testing.T) {
	tests := map[string]func(c *Config){
		"no columns":      func(c *Config) { c.Columns = 0 },
		"column mismatch": func(c *Config) { c.ColumnX = []float64{1} },
		"no travel":       func(c *Config) { c.Travel = 0 },
		"deadzone":        func(c *Config) { c.Deadzone = 1 },
		"negative dz":     func(c *Config) { c.Deadzone = -0.5 },
		"rate":            func(c *Config) { c.Rate = 0 },
		"flat":            func(c *Config) { c.BarRow = c.TopRow },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := testConfig()
			mutate(&cfg)
			_, err := New(cfg, testChart(), &tally{})
			assert.ErrorIs(t, err, game.ErrInvalidConfiguration)
		})
	}
}

func TestDefaultColumnPositions(t *testing.T) {
	cfg := testConfig()
	cfg.ColumnX = nil
	f, _ := newField(t, cfg, testChart())
	assert.Equal(t, []float64{0, 1, 2, 3}, f.Config().ColumnX)
}

func TestSpawnOnTime(t *testing.T) {
	f, _ := newField(t, testConfig(), testChart())

	f.Tick(500 * time.Millisecond)
	beats := f.Beats()
	require.Len(t, beats, 1)
	assert.Equal(t, 0, beats[0].Column)
	assert.Equal(t, 0.5, beats[0].Beat.Progress())
	assert.Equal(t, mgl64.Vec3{2, 5, 0}, beats[0].Beat.Position())

	f.Tick(time.Second)
	// The first expired, the second left the top row half a second ago
	beats = f.Beats()
	require.Len(t, beats, 1)
	assert.Equal(t, 1, beats[0].Column)
	assert.Equal(t, 0.5, beats[0].Beat.Progress())
}

func TestPressHits(t *testing.T) {
	f, s := newField(t, testConfig(), testChart())
	chart := f.chart

	f.Tick(500 * time.Millisecond)
	require.NoError(t, f.Press(0))
	frame := f.Tick(500 * time.Millisecond)

	require.Len(t, frame.Hits, 1)
	hit := frame.Hits[0]
	assert.Equal(t, 0, hit.Column)
	assert.Equal(t, 1.0, hit.Progress)
	assert.Equal(t, time.Duration(0), hit.Offset)
	assert.Equal(t, 0, hit.Tier)
	assert.True(t, hit.Note.Hit)
	assert.Equal(t, time.Second, hit.Note.HitTime)
	assert.Equal(t, 1, s.points)
	assert.Equal(t, []game.Input{{Index: 0, HitTime: time.Second}}, f.Inputs())

	// The second note just left the top row
	beats := f.Beats()
	require.Len(t, beats, 1)
	assert.Equal(t, 1, beats[0].Column)

	active, start, end := chart.Active()
	assert.Len(t, active, 2)
	assert.Equal(t, 1, start)
	assert.Equal(t, 3, end)
}

func TestEarlyHitTier(t *testing.T) {
	f, s := newField(t, testConfig(), testChart())

	f.Tick(950 * time.Millisecond)
	require.NoError(t, f.Press(0))
	frame := f.Tick(0)

	require.Len(t, frame.Hits, 1)
	assert.Equal(t, 1, frame.Hits[0].Tier)
	assert.InDelta(t, float64(-50*time.Millisecond), float64(frame.Hits[0].Offset), float64(time.Microsecond))
	assert.Equal(t, 1, s.points)
}

func TestPressTooEarly(t *testing.T) {
	f, s := newField(t, testConfig(), testChart())

	f.Tick(500 * time.Millisecond)
	require.NoError(t, f.Press(0))
	frame := f.Tick(0)

	assert.Empty(t, frame.Hits)
	assert.Equal(t, []int{0}, frame.Empty)
	assert.Equal(t, 0, s.points)
	assert.Len(t, f.Beats(), 1)
}

func TestPressWrongColumn(t *testing.T) {
	f, s := newField(t, testConfig(), testChart())

	f.Tick(time.Second)
	require.NoError(t, f.Press(3))
	frame := f.Tick(0)

	assert.Empty(t, frame.Hits)
	assert.Equal(t, []int{3}, frame.Empty)
	assert.Equal(t, 0, s.points)
}

func TestPressUnknownColumn(t *testing.T) {
	f, _ := newField(t, testConfig(), testChart())
	assert.ErrorIs(t, f.Press(4), ErrUnknownColumn)
	assert.ErrorIs(t, f.Press(-1), ErrUnknownColumn)
}

func TestExpiry(t *testing.T) {
	f, s := newField(t, testConfig(), testChart())

	f.Tick(time.Second)
	frame := f.Tick(100 * time.Millisecond)
	assert.Empty(t, frame.Misses, "the upper bound of the window is still a hit")

	frame = f.Tick(time.Millisecond)
	require.Len(t, frame.Misses, 1)
	miss := frame.Misses[0]
	assert.Equal(t, 0, miss.Column)
	assert.Equal(t, len(judgements)-1, miss.Tier)
	assert.True(t, miss.Note.Miss)
	assert.Equal(t, 1101*time.Millisecond, miss.Note.MissTime)
	assert.Equal(t, 1, s.misses)
	assert.Equal(t, 0, s.points)
}

func TestLargeStepSpawnsAndExpires(t *testing.T) {
	f, s := newField(t, testConfig(), testChart())

	frame := f.Tick(1500 * time.Millisecond)
	require.Len(t, frame.Misses, 1)
	assert.Equal(t, 1.5, frame.Misses[0].Progress)
	assert.Equal(t, 1, s.misses)
}

func TestMinesAreNotJudged(t *testing.T) {
	f, s := newField(t, testConfig(), testChart())

	for i := 0; i < 500; i++ {
		f.Tick(10 * time.Millisecond)
	}
	assert.True(t, f.Done())
	assert.Equal(t, 3, s.misses)
	assert.Equal(t, 5*time.Second, f.Elapsed())
}

func TestPlayThrough(t *testing.T) {
	chart := testChart()
	f, s := newField(t, testConfig(), chart)

	step := 10 * time.Millisecond
	for !f.Done() {
		e := f.Elapsed() + step
		for _, n := range chart.Notes {
			if !n.IsMine && n.Time == e {
				require.NoError(t, f.Press(int(n.Index)))
			}
		}
		f.Tick(step)
		require.Less(t, f.Elapsed(), 10*time.Second)
	}

	assert.Equal(t, 3, s.points)
	assert.Equal(t, 0, s.misses)
	for _, n := range chart.Notes {
		assert.Equal(t, !n.IsMine, n.Hit)
	}
}

func TestRate(t *testing.T) {
	cfg := testConfig()
	cfg.Rate = 2
	f, s := newField(t, cfg, testChart())

	// The note at 2s arrives at 1s
	f.Tick(time.Second)
	require.NoError(t, f.Press(1))
	frame := f.Tick(0)

	require.Len(t, frame.Hits, 1)
	assert.Equal(t, 1, frame.Hits[0].Column)
	assert.Equal(t, 1, s.points)
}

func TestLeadIn(t *testing.T) {
	cfg := testConfig()
	cfg.Start = -2 * time.Second
	f, _ := newField(t, cfg, testChart())

	f.Tick(time.Second)
	assert.Empty(t, f.Beats())
	f.Tick(1500 * time.Millisecond)
	assert.Len(t, f.Beats(), 1)
	assert.Equal(t, 500*time.Millisecond, f.Elapsed())
}

func TestNotesAreSorted(t *testing.T) {
	chart := &game.Chart{Notes: []*game.Note{
		{Index: 1, Time: 3 * time.Second},
		{Index: 0, Time: time.Second},
	}}
	f, _ := newField(t, testConfig(), chart)

	f.Tick(500 * time.Millisecond)
	beats := f.Beats()
	require.Len(t, beats, 1)
	assert.Equal(t, 0, beats[0].Column)
}

func TestUnknownNoteColumnIsSkipped(t *testing.T) {
	chart := &game.Chart{Notes: []*game.Note{{Index: 7, Time: time.Second}}}
	f, _ := newField(t, testConfig(), chart)

	f.Tick(time.Second)
	assert.Empty(t, f.Beats())
	assert.True(t, f.Done())
}

func TestNegativeTick(t *testing.T) {
	f, _ := newField(t, testConfig(), testChart())
	f.Tick(500 * time.Millisecond)
	f.Tick(-time.Second)
	assert.Equal(t, 500*time.Millisecond, f.Elapsed())
	assert.Equal(t, 0.5, f.Beats()[0].Beat.Progress())
}

func TestHitTierAtWindowEdge(t *testing.T) {
	f, _ := newField(t, testConfig(), testChart())

	// 1.1 - 1 rounds to just above the 0.1 deadzone
	assert.Equal(t, -1, game.Judge(1.1, 0.1, judgements))
	assert.Equal(t, 1, f.hitTier(1.1))
	assert.Equal(t, 1, f.hitTier(0.9))
	assert.Equal(t, 0, f.hitTier(1))
}
