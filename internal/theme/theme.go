package theme

import "git.lost.host/meutraa/beatlane/internal/game"

type Theme interface {
	RenderMine(column int, denom int) string
	RenderNote(column int, denom int) string
	RenderHitField(column int) string
	RenderJudgement(j game.Judgement) string
}
