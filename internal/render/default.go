package render

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	ansi "github.com/leaanthony/go-ansi-parser"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

type cell struct {
	row, col int
}

type DefaultRenderer struct {
	out          io.Writer
	fd           int
	buffer       strings.Builder
	restoreState *term.State
	decorations  []*decoration

	// Width of every message written last frame by its first cell, blanked
	// before the next frame
	drawn, previous map[cell]int
}

type decoration struct {
	Row, Col int
	Content  string
	Frames   int // remaining frames until removed
}

// New renders to out, switching the terminal behind fd to raw mode on Init.
func New(out io.Writer, fd int) *DefaultRenderer {
	return &DefaultRenderer{
		out:      out,
		fd:       fd,
		drawn:    map[cell]int{},
		previous: map[cell]int{},
	}
}

func (r *DefaultRenderer) Init() error {
	if term.IsTerminal(r.fd) {
		state, err := term.MakeRaw(r.fd)
		if nil != err {
			return err
		}
		r.restoreState = state
	}

	_, err := fmt.Fprintf(r.out, "%s%s%s",
		"\033[?1049h", // Enable alternate buffer
		"\033[?25l",   // Make the cursor invisible
		"\033[2J",     // Clear the screen
	)
	return err
}

func (r *DefaultRenderer) Deinit() error {
	_, err := fmt.Fprintf(r.out, "%s%s",
		"\033[?1049l", // Disable alternate buffer
		"\033[?25h",   // Make the cursor visible
	)
	if nil != r.restoreState {
		if rerr := term.Restore(r.fd, r.restoreState); nil != rerr {
			return rerr
		}
		r.restoreState = nil
	}
	return err
}

func (r *DefaultRenderer) Size() (int, int, error) {
	columns, rows, err := term.GetSize(r.fd)
	return rows, columns, err
}

func (r *DefaultRenderer) AddDecoration(row, col int, content string, frames int) {
	r.decorations = append(r.decorations, &decoration{
		Row:     row,
		Col:     col,
		Content: content,
		Frames:  frames,
	})
}

func (r *DefaultRenderer) tickDecorations() {
	nd := make([]*decoration, 0, len(r.decorations))
	for _, d := range r.decorations {
		if d.Frames <= 0 {
			continue
		}
		r.Fill(d.Row, d.Col, d.Content)
		d.Frames--
		nd = append(nd, d)
	}
	r.decorations = nd
}

// RenderLoop calls render once per frame with the time since the last frame,
// until it returns false.
func (r *DefaultRenderer) RenderLoop(framePeriod time.Duration, render func(dt time.Duration) bool) {
	last := time.Now()
	for {
		now := time.Now()
		deadline := now.Add(framePeriod)

		r.clear()
		cont := render(now.Sub(last))
		last = now
		r.tickDecorations()
		r.flush()
		if !cont {
			return
		}

		time.Sleep(time.Until(deadline))
	}
}

// Blank every message drawn last frame
func (r *DefaultRenderer) clear() {
	r.previous, r.drawn = r.drawn, r.previous
	for c := range r.drawn {
		delete(r.drawn, c)
	}
	for c, width := range r.previous {
		r.move(c.row, c.col)
		r.buffer.WriteString(strings.Repeat(" ", width))
	}
}

// Width is the number of terminal cells message covers, colour codes
// excluded.
func Width(message string) int {
	visible, err := ansi.Cleanse(message)
	if nil != err {
		visible = message
	}
	return runewidth.StringWidth(visible)
}

func (r *DefaultRenderer) move(row, column int) {
	r.buffer.WriteString("\033[")
	r.buffer.WriteString(strconv.Itoa(row))
	r.buffer.WriteString(";")
	r.buffer.WriteString(strconv.Itoa(column))
	r.buffer.WriteString("H")
}

func (r *DefaultRenderer) Fill(row, column int, message string) {
	if row < 1 || column < 1 {
		return
	}
	r.move(row, column)
	r.buffer.WriteString(message)
	c := cell{row, column}
	if w := Width(message); w > r.drawn[c] {
		r.drawn[c] = w
	}
}

func (r *DefaultRenderer) flush() {
	io.WriteString(r.out, r.buffer.String())
	r.buffer.Reset()
}

// Cell maps a beat position to a terminal cell, X being the column and Y the
// row.
func Cell(v mgl64.Vec3) (row, col int) {
	return int(math.Round(v.Y())), int(math.Round(v.X()))
}
