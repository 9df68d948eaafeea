package input

import (
	"errors"
	"io"
	"log"
	"sync"

	"github.com/eiannone/keyboard"
)

var ErrQuit = errors.New("quit requested")

// Event is a key press translated for the playfield. Column is -1 for keys
// that are not bound.
type Event struct {
	Column int
	Rune   rune
	Quit   bool
}

// Keymap binds runes to columns.
type Keymap map[rune]int

func NewKeymap(keys []rune) Keymap {
	k := make(Keymap, len(keys))
	for i, r := range keys {
		k[r] = i
	}
	return k
}

func (k Keymap) Translate(ev keyboard.KeyEvent) Event {
	if ev.Key == keyboard.KeyEsc || ev.Key == keyboard.KeyCtrlC {
		return Event{Column: -1, Quit: true}
	}
	column, ok := k[ev.Rune]
	if !ok {
		column = -1
	}
	return Event{Column: column, Rune: ev.Rune}
}

type Keyboard struct {
	keys   <-chan keyboard.KeyEvent
	logger *log.Logger
	done   chan struct{}
	once   sync.Once
}

// Open puts the terminal in key reading mode with a buffer of size keys.
func Open(size int, logger *log.Logger) (*Keyboard, error) {
	keys, err := keyboard.GetKeys(size)
	if nil != err {
		return nil, err
	}
	return newKeyboard(keys, logger), nil
}

func newKeyboard(keys <-chan keyboard.KeyEvent, logger *log.Logger) *Keyboard {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Keyboard{
		keys:   keys,
		logger: logger,
		done:   make(chan struct{}),
	}
}

// ReadRune blocks for the next key, for menus.
func (k *Keyboard) ReadRune() (rune, error) {
	select {
	case ev, ok := <-k.keys:
		if !ok {
			return 0, io.EOF
		}
		if nil != ev.Err {
			return 0, ev.Err
		}
		if ev.Key == keyboard.KeyEsc || ev.Key == keyboard.KeyCtrlC {
			return 0, ErrQuit
		}
		return ev.Rune, nil
	case <-k.done:
		return 0, io.EOF
	}
}

// Events translates every following key through keymap. The channel is
// closed when the keyboard is closed or a read fails.
func (k *Keyboard) Events(keymap Keymap) <-chan Event {
	events := make(chan Event, cap(k.keys))
	go func() {
		defer close(events)
		for {
			select {
			case ev, ok := <-k.keys:
				if !ok {
					return
				}
				if nil != ev.Err {
					k.logger.Println("unable to read key", ev.Err)
					return
				}
				select {
				case events <- keymap.Translate(ev):
				case <-k.done:
					return
				}
			case <-k.done:
				return
			}
		}
	}()
	return events
}

func (k *Keyboard) Close() error {
	var err error
	k.once.Do(func() {
		close(k.done)
		err = keyboard.Close()
	})
	return err
}
