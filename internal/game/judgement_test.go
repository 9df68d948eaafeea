package game

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var tiers = []Judgement{
	{Window: 0.1, Name: "Exact"},
	{Window: 0.4, Name: "Great"},
	{Window: 1, Name: "Good"},
	{Window: -1, Name: "Miss"},
}

func TestJudge(t *testing.T) {
	tests := map[float64]int{
		1:     0,
		1.005: 0,
		0.995: 0,
		1.02:  1,
		0.97:  1,
		1.05:  2,
		0.9:   2,
		1.2:   -1,
		0.5:   -1,
	}
	for progress, expected := range tests {
		assert.Equal(t, expected, Judge(progress, 0.1, tiers), "progress %v", progress)
	}
}

func TestNoteMarkHit(t *testing.T) {
	n := &Note{}
	assert.False(t, n.Judged())

	n.MarkHit(true)
	assert.True(t, n.Hit)
	assert.False(t, n.Miss)

	n.MarkHit(false)
	assert.False(t, n.Hit)
	assert.True(t, n.Miss)

	n.HitTime = time.Second
	n.Reset()
	assert.False(t, n.Judged())
	assert.Zero(t, n.HitTime)
}

func TestChartClone(t *testing.T) {
	c := &Chart{
		Notes:     []*Note{{Index: 1, Time: time.Second, Hit: true}, {Index: 2, Time: 2 * time.Second}},
		NoteCount: 2,
	}
	c.SetActive(0, 1)

	clone := c.Clone()
	assert.Len(t, clone.Notes, 2)
	assert.False(t, clone.Notes[0].Hit)
	assert.True(t, c.Notes[0].Hit)
	assert.NotSame(t, c.Notes[1], clone.Notes[1])
	assert.Equal(t, time.Second, clone.Notes[0].Time)

	active, start, end := clone.Active()
	assert.Empty(t, active)
	assert.Equal(t, 0, start)
	assert.Equal(t, 0, end)
}
