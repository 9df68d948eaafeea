package parser

import (
	"io"

	"git.lost.host/meutraa/beatlane/internal/game"
)

type Parser interface {
	Parse(file string) ([]*game.Chart, error)
	ParseReader(r io.Reader) ([]*game.Chart, error)
}
