package game

import "fmt"

// Difficulty is one #NOTES section of a simfile. Section holds the raw rows,
// which also identify the chart in the score store.
type Difficulty struct {
	Type    string // e.g. dance-single
	Name    string
	Msd     string
	Section string
	NKeys   uint8
}

// Chart types with a column count this game can lay out
var NKeyMap = map[string]uint8{
	"dance-single": 4,
	"dance-solo":   6,
	"dance-double": 8,
}

func (d Difficulty) String() string {
	return fmt.Sprintf("%v %v (%v, %vk)", d.Name, d.Msd, d.Type, d.NKeys)
}
