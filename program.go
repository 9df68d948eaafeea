package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"git.lost.host/meutraa/beatlane/internal/audio"
	"git.lost.host/meutraa/beatlane/internal/config"
	"git.lost.host/meutraa/beatlane/internal/field"
	"git.lost.host/meutraa/beatlane/internal/game"
	"git.lost.host/meutraa/beatlane/internal/input"
	"git.lost.host/meutraa/beatlane/internal/parser"
	"git.lost.host/meutraa/beatlane/internal/render"
	"git.lost.host/meutraa/beatlane/internal/score"
	"git.lost.host/meutraa/beatlane/internal/theme"
)

const (
	hitFrames  = 24
	missFrames = 120
)

type Program struct {
	Config   *config.Config
	Parser   parser.Parser
	Scorer   score.Scorer
	Theme    theme.Theme
	Renderer render.Renderer
	logger   *log.Logger

	audioFile, chartFile string
	charts               []*game.Chart
	chart                *game.Chart

	player *audio.Player
	field  *field.Field
	tally  *score.Tally
	mines  []*game.Note // Mines not yet past the hit bar, by time

	rows, columns int
	topRow        int
	barRow        int
	columnX       []int
	sideCol       int
}

func NewProgram(cfg *config.Config, logger *log.Logger) *Program {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Program{
		Config: cfg,
		Parser: &parser.DefaultParser{},
		Scorer: &score.DefaultScorer{
			Judgements: cfg.Judgements,
			Step:       score.DefaultStep,
			Logger:     logger,
		},
		Theme:    &theme.DefaultTheme{},
		Renderer: render.New(os.Stdout, int(os.Stdout.Fd())),
		logger:   logger,
	}
}

// Init finds the chart and the song in the song directory and parses the
// charts.
func (p *Program) Init() error {
	if err := filepath.Walk(p.Config.Directory, func(path string, info os.FileInfo, err error) error {
		if nil != err {
			return err
		}
		switch {
		case info.IsDir():
		case filepath.Ext(path) == ".sm":
			p.chartFile = path
		case audio.Supported(path):
			p.audioFile = path
		}
		return nil
	}); nil != err {
		return fmt.Errorf("unable to walk song directory: %w", err)
	}

	if p.audioFile == "" || p.chartFile == "" {
		return errors.New("unable to find .sm and .mp3/.ogg/.wav file in given directory")
	}

	charts, err := p.Parser.Parse(p.chartFile)
	if nil != err {
		return err
	}
	p.charts = charts
	return p.Scorer.Init(p.Config.Database)
}

func (p *Program) Deinit() {
	if nil != p.player {
		if err := p.player.Close(); nil != err {
			p.logger.Println("unable to close audio", err)
		}
	}
	p.Scorer.Deinit()
}

// Select lists the difficulties and reads the chart to play from the
// keyboard.
func (p *Program) Select(kbd *input.Keyboard) error {
	for i, c := range p.charts {
		fmt.Printf("%2v) %3v  %5v  %v\r\n", i, c.Difficulty.Msd, c.NoteCount, c.Difficulty.Name)
	}
	r, err := kbd.ReadRune()
	if nil != err {
		return err
	}
	index, err := strconv.Atoi(string(r))
	if nil != err || index >= len(p.charts) {
		return fmt.Errorf("no difficulty %q", r)
	}
	p.chart = p.charts[index]
	return nil
}

func (p *Program) layout() error {
	rows, columns, err := p.Renderer.Size()
	if nil != err {
		return fmt.Errorf("unable to get terminal size: %w", err)
	}
	p.rows, p.columns = rows, columns
	p.topRow = 1
	p.barRow = rows - int(p.Config.BarRow)
	if p.barRow <= p.topRow {
		return fmt.Errorf("terminal is too short, %v rows", rows)
	}

	n := int(p.chart.Difficulty.NKeys)
	spacing := int(p.Config.ColumnSpacing)
	middle := columns >> 1
	p.columnX = make([]int, n)
	for i := range p.columnX {
		p.columnX[i] = middle + spacing*(2*i-(n-1))/2
	}
	p.sideCol = p.columnX[0] - 36
	if p.sideCol < 2 {
		p.sideCol = 2
	}
	return nil
}

// Start lays out the field for the selected chart and opens the song.
func (p *Program) Start(metrics *score.Metrics) error {
	if err := p.layout(); nil != err {
		return err
	}

	xs := make([]float64, len(p.columnX))
	for i, x := range p.columnX {
		xs[i] = float64(x)
	}
	p.tally = score.NewTally(len(p.Config.Judgements), metrics)
	f, err := field.New(field.Config{
		Columns:    len(p.columnX),
		Travel:     p.Config.Travel,
		Deadzone:   p.Config.Deadzone,
		Rate:       p.Config.Rate,
		Start:      p.Config.Offset - p.Config.Delay,
		TopRow:     float64(p.topRow),
		BarRow:     float64(p.barRow),
		ColumnX:    xs,
		Judgements: p.Config.Judgements,
		Logger:     p.logger,
	}, p.chart, p.tally)
	if nil != err {
		return err
	}
	p.field = f

	p.mines = p.mines[:0]
	for _, n := range p.chart.Notes {
		if n.IsMine && int(n.Index) < len(p.columnX) {
			p.mines = append(p.mines, n)
		}
	}

	p.logger.Printf("Opening %v (%v)\n", p.audioFile, p.chartFile)
	player, err := audio.Open(p.audioFile, p.Config.Rate)
	if nil != err {
		return err
	}
	p.player = player
	return nil
}

// Play runs the game until the field is done or quit is pressed.
func (p *Program) Play(events <-chan input.Event) error {
	if err := p.Renderer.Init(); nil != err {
		return err
	}
	defer func() {
		if err := p.Renderer.Deinit(); nil != err {
			p.logger.Println("unable to restore terminal", err)
		}
	}()

	if err := p.player.Play(p.Config.Delay); nil != err {
		return err
	}

	p.Renderer.RenderLoop(p.Config.FramePeriod, func(dt time.Duration) bool {
		if !p.Update(dt, events) {
			return false
		}
		p.Render()
		return !p.field.Done()
	})
	return nil
}

// Update presses every key read since the last frame and moves the field on.
func (p *Program) Update(dt time.Duration, events <-chan input.Event) bool {
drain:
	for {
		select {
		case ev, ok := <-events:
			if !ok || ev.Quit {
				return false
			}
			if ev.Column < 0 {
				continue
			}
			if err := p.field.Press(ev.Column); nil != err {
				p.logger.Println("ignoring key", err)
			}
		default:
			break drain
		}
	}

	frame := p.field.Tick(dt)
	p.tally.Record(frame)

	judgementRow := p.barRow + 2
	for _, e := range frame.Hits {
		if e.Tier < 0 {
			continue
		}
		j := p.Config.Judgements[e.Tier]
		col := p.columnX[e.Column]
		p.Renderer.AddDecoration(p.barRow, col, p.Theme.RenderJudgement(game.Judgement{Color: j.Color, Name: "⬤"}), hitFrames)
		p.Renderer.AddDecoration(judgementRow, col-len(j.Name)/2, p.Theme.RenderJudgement(j), hitFrames)
	}
	miss := p.Config.Judgements[len(p.Config.Judgements)-1]
	for _, e := range frame.Misses {
		col := p.columnX[e.Column]
		p.Renderer.AddDecoration(p.barRow, col, p.Theme.RenderJudgement(game.Judgement{Color: miss.Color, Name: "╳"}), missFrames)
	}
	return true
}

func (p *Program) Render() {
	p.RenderStatic()
	p.RenderGame()
}

// How far a mine is along its lane, since mines never become beats
func (p *Program) mineProgress(note *game.Note) float64 {
	arrival := time.Duration(math.Round(float64(note.Time) / p.Config.Rate))
	return float64(p.field.Elapsed()-arrival+p.Config.Travel) / float64(p.Config.Travel)
}

func (p *Program) RenderGame() {
	for _, l := range p.field.Beats() {
		row, col := render.Cell(l.Beat.Position())
		p.Renderer.Fill(row, col, p.Theme.RenderNote(l.Column, l.Note.Denom))
	}

	for len(p.mines) > 0 && p.mineProgress(p.mines[0]) > 1 {
		p.mines = p.mines[1:]
	}
	for _, note := range p.mines {
		progress := p.mineProgress(note)
		if progress < 0 {
			break
		}
		row := p.topRow + int(math.Round(progress*float64(p.barRow-p.topRow)))
		p.Renderer.Fill(row, p.columnX[note.Index], p.Theme.RenderMine(int(note.Index), note.Denom))
	}
}

func (p *Program) RenderStatic() {
	for i, x := range p.columnX {
		p.Renderer.Fill(p.barRow, x, p.Theme.RenderHitField(i))
	}

	t := p.tally
	_, start, end := p.chart.Active()
	p.Renderer.Fill(4, p.sideCol, fmt.Sprintf("Active Window:  [%v - %v]", start, end))
	p.Renderer.Fill(10, p.sideCol, fmt.Sprintf("       Points:  %6v", t.Points))
	p.Renderer.Fill(11, p.sideCol, fmt.Sprintf("     Error dt:  %6.0f ms", float64(t.TotalError)/float64(time.Millisecond)))
	p.Renderer.Fill(12, p.sideCol, fmt.Sprintf("        Stdev:  %6.2f ms", t.Stdev/float64(time.Millisecond)))
	p.Renderer.Fill(13, p.sideCol, fmt.Sprintf("         Mean:  %6.2f ms", t.Mean/float64(time.Millisecond)))
	p.Renderer.Fill(14, p.sideCol, fmt.Sprintf("        Notes:  %6v", p.chart.NoteCount))
	p.Renderer.Fill(15, p.sideCol, fmt.Sprintf("        Holds:  %6v", p.chart.HoldCount))
	p.Renderer.Fill(16, p.sideCol, fmt.Sprintf("        Mines:  %6v", p.chart.MineCount))
	for i, j := range p.Config.Judgements {
		name := p.Theme.RenderJudgement(game.Judgement{Color: j.Color, Name: fmt.Sprintf("%13v", j.Name)})
		p.Renderer.Fill(18+i, p.sideCol, fmt.Sprintf("%v:  %6v", name, t.Counts[i]))
	}
}

// Finish saves the performance and prints how it went against the previous
// ones.
func (p *Program) Finish(out io.Writer) error {
	settings := score.Settings{
		Rate:     p.Config.Rate,
		Travel:   p.Config.Travel,
		Deadzone: p.Config.Deadzone,
	}

	histories, err := p.Scorer.Load(p.chart)
	if nil != err {
		return err
	}
	best := -1
	for i := range histories {
		s, err := p.Scorer.Score(p.chart, &histories[i])
		if nil != err {
			p.logger.Println("unable to replay", histories[i].ID, err)
			continue
		}
		if s.Points > best {
			best = s.Points
		}
	}

	id, err := p.Scorer.Save(p.chart, p.field.Inputs(), settings)
	if nil != err {
		return err
	}

	t := p.tally
	fmt.Fprintf(out, "%v  %v\r\n", id, p.chart.Difficulty)
	fmt.Fprintf(out, "Points: %v  Hits: %v  Misses: %v\r\n", t.Points, t.Hits, t.Misses)
	for i, j := range p.Config.Judgements {
		fmt.Fprintf(out, "%13v: %6v\r\n", j.Name, t.Counts[i])
	}
	if best >= 0 {
		fmt.Fprintf(out, "Best of %v previous: %v\r\n", len(histories), best)
	}
	return nil
}
