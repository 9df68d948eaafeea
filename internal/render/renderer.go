package render

import (
	"time"
)

type Renderer interface {
	Init() error
	Deinit() error
	Size() (rows, columns int, err error)
	AddDecoration(row, col int, content string, frames int)
	RenderLoop(framePeriod time.Duration, render func(dt time.Duration) bool)
	Fill(row, column int, message string)
}
