package config

import (
	"errors"
	"fmt"
	"time"

	"git.lost.host/meutraa/beatlane/internal/game"
	"gopkg.in/alecthomas/kingpin.v2"
)

const Version = "0.3.0"

var ErrUnknownKey = errors.New("key is not bound to a column")

type Config struct {
	Directory     string
	Rate          float64
	Offset        time.Duration
	Delay         time.Duration
	Travel        time.Duration
	Deadzone      float64
	ColumnSpacing uint
	FramePeriod   time.Duration
	BarRow        uint
	Database      string
	MetricsAddr   string
	Verbose       bool

	keys4, keys6, keys8 string

	Judgements []game.Judgement
}

func newApp(c *Config) *kingpin.Application {
	app := kingpin.New("beatlane", "Terminal rhythm game")
	app.Version(Version)

	app.Arg("directory", "Song/chart directory").Required().ExistingDirVar(&c.Directory)
	app.Flag("rate", "Playback rate").Default("1.0").Short('r').Float64Var(&c.Rate)
	app.Flag("offset", "Global offset").Default("0ms").Short('o').DurationVar(&c.Offset)
	app.Flag("delay", "Start delay").Default("1.5s").Short('d').DurationVar(&c.Delay)
	app.Flag("travel", "Time a beat takes to reach the hit bar").Default("1s").Short('t').DurationVar(&c.Travel)
	app.Flag("deadzone", "Accepted distance from the hit bar, as a fraction of the travel").Default("0.15").Short('z').Float64Var(&c.Deadzone)
	app.Flag("spacing", "Columns between keys").Default("6").Short('S').UintVar(&c.ColumnSpacing)
	app.Flag("frame-period", "Render frame period").Default("4ms").Short('p').DurationVar(&c.FramePeriod)
	app.Flag("keys-single", "Keys for 4k").Default("dfjk").Short('k').StringVar(&c.keys4)
	app.Flag("keys-solo", "Keys for 6k").Default("sdfjkl").StringVar(&c.keys6)
	app.Flag("keys-double", "Keys for 8k").Default("asdfjkl;").StringVar(&c.keys8)
	app.Flag("bar-row", "Rows between the hit bar and the bottom of the terminal").Default("4").UintVar(&c.BarRow)
	app.Flag("database", "Score database").Default("./scores.db").StringVar(&c.Database)
	app.Flag("metrics-addr", "Serve prometheus metrics on this address").StringVar(&c.MetricsAddr)
	app.Flag("verbose", "Log beat lifecycles").Short('v').BoolVar(&c.Verbose)
	return app
}

// Parse reads the command line, without the program name.
func Parse(args []string) (*Config, error) {
	c := &Config{}
	if _, err := newApp(c).Parse(args); nil != err {
		return nil, err
	}
	if err := c.validate(); nil != err {
		return nil, err
	}

	c.Judgements = []game.Judgement{
		{Window: 0.1, Name: "Exact", Color: game.Color{R: 236, G: 30, B: 0}},
		{Window: 0.25, Name: "Marvelous", Color: game.Color{R: 173, G: 236, B: 236}},
		{Window: 0.5, Name: "Great", Color: game.Color{R: 0, G: 236, B: 236}},
		{Window: 0.75, Name: "Good", Color: game.Color{R: 0, G: 236, B: 128}},
		{Window: 1, Name: "Okay", Color: game.Color{R: 236, G: 195, B: 0}},
		{Window: -1, Name: "Miss", Color: game.Color{R: 236, G: 0, B: 0}},
	}
	return c, nil
}

func (c *Config) validate() error {
	if c.Rate <= 0 {
		return fmt.Errorf("%w: rate must be positive", game.ErrInvalidConfiguration)
	}
	if c.Travel <= 0 {
		return fmt.Errorf("%w: travel must be positive", game.ErrInvalidConfiguration)
	}
	if !game.ValidDeadzone(c.Deadzone) {
		return fmt.Errorf("%w: deadzone must be in [0, 1)", game.ErrInvalidConfiguration)
	}
	if c.FramePeriod <= 0 {
		return fmt.Errorf("%w: frame period must be positive", game.ErrInvalidConfiguration)
	}
	for _, keys := range []string{c.keys4, c.keys6, c.keys8} {
		seen := map[rune]bool{}
		for _, r := range keys {
			if seen[r] {
				return fmt.Errorf("%w: %q binds %q twice", game.ErrInvalidConfiguration, keys, r)
			}
			seen[r] = true
		}
	}
	if n := len([]rune(c.keys4)); n != 4 {
		return fmt.Errorf("%w: 4k needs 4 keys, got %v", game.ErrInvalidConfiguration, n)
	}
	if n := len([]rune(c.keys6)); n != 6 {
		return fmt.Errorf("%w: 6k needs 6 keys, got %v", game.ErrInvalidConfiguration, n)
	}
	if n := len([]rune(c.keys8)); n != 8 {
		return fmt.Errorf("%w: 8k needs 8 keys, got %v", game.ErrInvalidConfiguration, n)
	}
	return nil
}

func (c *Config) Keys(nKeys uint8) []rune {
	switch nKeys {
	case 6:
		return []rune(c.keys6)
	case 8:
		return []rune(c.keys8)
	}
	return []rune(c.keys4)
}

func (c *Config) KeyColumn(r rune, nKeys uint8) (int, error) {
	for i, k := range c.Keys(nKeys) {
		if r == k {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownKey, r)
}
