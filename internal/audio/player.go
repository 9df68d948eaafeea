package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

type decoder func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)

var decoders = map[string]decoder{
	".mp3": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) },
	".ogg": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return vorbis.Decode(f) },
	".wav": func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) },
}

// Supported reports whether a file can be opened by its extension.
func Supported(path string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Player plays a song at a playback rate by running the speaker that much
// faster than the song's sample rate.
type Player struct {
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	rate     float64
	ctrl     *beep.Ctrl
}

func Open(path string, rate float64) (*Player, error) {
	decode, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, path)
	}
	if rate <= 0 {
		return nil, fmt.Errorf("invalid playback rate %v", rate)
	}
	f, err := os.Open(path)
	if nil != err {
		return nil, err
	}
	streamer, format, err := decode(f)
	if nil != err {
		f.Close()
		return nil, fmt.Errorf("unable to decode %v: %w", path, err)
	}
	return &Player{
		file:     f,
		streamer: streamer,
		format:   format,
		rate:     rate,
	}, nil
}

func (p *Player) sampleRate() beep.SampleRate {
	return beep.SampleRate(math.Round(float64(p.format.SampleRate) * p.rate))
}

// Length is how long the song plays for at the player's rate.
func (p *Player) Length() time.Duration {
	return p.sampleRate().D(p.streamer.Len())
}

// Play starts the song after delay of wall time. A negative delay skips
// into the song instead.
func (p *Player) Play(delay time.Duration) error {
	sr := p.sampleRate()
	if err := speaker.Init(sr, sr.N(time.Second/60)); nil != err {
		return fmt.Errorf("unable to open speaker: %w", err)
	}

	var s beep.Streamer = p.streamer
	switch {
	case delay > 0:
		s = beep.Seq(beep.Silence(sr.N(delay)), p.streamer)
	case delay < 0:
		skip := sr.N(-delay)
		if skip > p.streamer.Len() {
			skip = p.streamer.Len()
		}
		if err := p.streamer.Seek(skip); nil != err {
			return err
		}
	}

	p.ctrl = &beep.Ctrl{Streamer: s}
	speaker.Play(p.ctrl)
	return nil
}

func (p *Player) Close() error {
	if nil != p.ctrl {
		speaker.Lock()
		p.ctrl.Paused = true
		speaker.Unlock()
	}
	err := p.streamer.Close()
	if cerr := p.file.Close(); nil == err && !errors.Is(cerr, os.ErrClosed) {
		err = cerr
	}
	return err
}
