package game

type Chart struct {
	Notes               []*Note
	Measures            []*Measure
	NoteCounts          []int64 // Rows with 1, 2, 3... simultaneous notes
	NoteCountsAsStrings []string
	NoteCount           int64
	HoldCount           int64
	MineCount           int64
	Difficulty          Difficulty

	activeNotes    []*Note
	startNoteIndex int
	endNoteIndex   int
}

func (c *Chart) Active() ([]*Note, int, int) {
	return c.activeNotes, c.startNoteIndex, c.endNoteIndex
}

func (c *Chart) SetActive(start int, end int) {
	c.activeNotes = c.Notes[start:end]
	c.startNoteIndex = start
	c.endNoteIndex = end
}

// Clone copies the chart with fresh note state, for replays.
func (c *Chart) Clone() *Chart {
	notes := make([]*Note, len(c.Notes))
	for i, n := range c.Notes {
		nn := *n
		nn.Reset()
		notes[i] = &nn
	}
	return &Chart{
		Notes:               notes,
		Measures:            c.Measures,
		NoteCounts:          c.NoteCounts,
		NoteCountsAsStrings: c.NoteCountsAsStrings,
		NoteCount:           c.NoteCount,
		HoldCount:           c.HoldCount,
		MineCount:           c.MineCount,
		Difficulty:          c.Difficulty,
	}
}
