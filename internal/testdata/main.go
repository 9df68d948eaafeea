package testdata

import (
	"encoding/json"

	"git.lost.host/meutraa/beatlane/internal/game"
)

// Simfile is a small StepMania chart with a bpm change, a hold, a mine
// and a chart type that is not playable.
const Simfile = `#TITLE:Test;
#ARTIST:beatlane;
#OFFSET:-0.100;
#BPMS:0.000=120.000,
4.000=240.000;
#NOTES:
     dance-single:
     :
     Easy:
     2:
     0.1,0.2,0.3,0.4,0.5:
// measure 1
1000
0100
0010
0001
,  // measure 2
2000
0000
3000
0000
0000
0000
0M00
1100
;
#NOTES:
     pump-single:
     :
     Hard:
     9:
     0,0,0,0,0:
00000
;
`

const data = `{
	"Notes": [
		{"Index": 0, "Denom": 1, "Time": 1000000000},
		{"Index": 1, "Denom": 2, "Time": 1250000000},
		{"Index": 2, "Denom": 1, "Time": 1500000000},
		{"Index": 2, "Denom": 1, "Time": 1750000000, "IsMine": true},
		{"Index": 3, "Denom": 1, "Time": 2000000000},
		{"Index": 0, "Denom": 1, "Time": 2000000000}
	],
	"NoteCount": 5,
	"MineCount": 1,
	"Difficulty": {"Name": "Fixture", "Msd": "3", "Section": "fixture", "NKeys": 4}
}`

func GetChart() (*game.Chart, error) {
	var chart game.Chart
	if err := json.Unmarshal([]byte(data), &chart); nil != err {
		return nil, err
	}
	return &chart, nil
}
