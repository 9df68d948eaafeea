package parser

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"git.lost.host/meutraa/beatlane/internal/game"
)

var ErrNoCharts = errors.New("no playable charts")

type DefaultParser struct{}

func (p *DefaultParser) getSecondsPerNote(rates []game.BPM, currentBeat float64, bpn float64) (float64, error) {
	sel := 0.0
	for _, bpm := range rates {
		if currentBeat >= bpm.StartingBeat {
			sel = bpm.Value
		} else {
			break
		}
	}
	if sel <= 0 {
		return 0, fmt.Errorf("no positive bpm at beat %v", currentBeat)
	}
	return bpn * 60.0 / sel, nil
}

// 0 – No note
// 1 – Normal note
// 2 – Hold head
// 3 – Hold/Roll tail
// 4 – Roll head
// M – Mine (or other negative note)
// K – Automatic keysound
// L – Lift note
// F – Fake note

func (p *DefaultParser) mapToNote(ch byte) bool {
	return ch == '1' || ch == '2' || ch == '4' || ch == 'M'
}

func isRow(line string, nKeys uint8) bool {
	if len(line) != int(nKeys) {
		return false
	}
	return strings.Trim(line, "01234MKLF") == ""
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// A #NAME:value; tag of the header
func tag(meta, name string) (string, bool) {
	i := strings.Index(meta, "#"+name+":")
	if i < 0 {
		return "", false
	}
	v := meta[i+len(name)+2:]
	if j := strings.Index(v, ";"); j >= 0 {
		v = v[:j]
	}
	return strings.TrimSpace(v), true
}

func parseBPMs(v string) ([]game.BPM, error) {
	bpms := []game.BPM{}
	v = strings.ReplaceAll(v, "\n", "")
	for _, bpm := range strings.Split(v, ",") {
		as := strings.Split(strings.TrimSpace(bpm), "=")
		if len(as) != 2 {
			return nil, fmt.Errorf("bad bpm change %q", bpm)
		}
		sb, err := strconv.ParseFloat(strings.TrimSpace(as[0]), 64)
		if nil != err {
			return nil, fmt.Errorf("bad bpm beat: %w", err)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(as[1]), 64)
		if nil != err {
			return nil, fmt.Errorf("bad bpm value: %w", err)
		}
		bpms = append(bpms, game.BPM{StartingBeat: sb, Value: value})
	}
	return bpms, nil
}

func (p *DefaultParser) Parse(file string) ([]*game.Chart, error) {
	f, err := os.Open(file)
	if nil != err {
		return nil, err
	}
	defer f.Close()
	charts, err := p.ParseReader(f)
	if nil != err {
		return nil, fmt.Errorf("unable to parse %v: %w", file, err)
	}
	return charts, nil
}

func (p *DefaultParser) ParseReader(r io.Reader) ([]*game.Chart, error) {
	data, err := io.ReadAll(r)
	if nil != err {
		return nil, err
	}

	str := strings.ReplaceAll(string(data), "\r", "")
	sections := strings.Split(str, "#NOTES:")
	meta := sections[0]

	difficulties := []game.Difficulty{}
	for _, section := range sections[1:] {
		fields := strings.SplitN(section, ":", 6)
		if len(fields) < 6 {
			return nil, errors.New("truncated #NOTES section")
		}
		kind := strings.TrimSpace(fields[0])
		nKeys, ok := game.NKeyMap[kind]
		if !ok {
			continue
		}
		body := fields[5]
		if i := strings.Index(body, ";"); i >= 0 {
			body = body[:i]
		}
		difficulties = append(difficulties, game.Difficulty{
			Type:    kind,
			Name:    strings.TrimSpace(fields[2]),
			Msd:     strings.TrimSpace(fields[3]),
			Section: body,
			NKeys:   nKeys,
		})
	}
	if len(difficulties) == 0 {
		return nil, ErrNoCharts
	}

	offset := 0.0
	if v, ok := tag(meta, "OFFSET"); ok && v != "" {
		offs, err := strconv.ParseFloat(v, 64)
		if nil != err {
			return nil, fmt.Errorf("bad offset: %w", err)
		}
		offset = -offs
	}
	v, ok := tag(meta, "BPMS")
	if !ok {
		return nil, errors.New("missing #BPMS")
	}
	bpms, err := parseBPMs(v)
	if nil != err {
		return nil, err
	}

	charts := []*game.Chart{}
	for _, difficulty := range difficulties {
		chart, err := p.parseChart(difficulty, offset, bpms)
		if nil != err {
			return nil, fmt.Errorf("%v chart: %w", difficulty.Name, err)
		}
		charts = append(charts, chart)
	}
	return charts, nil
}

func (p *DefaultParser) parseChart(difficulty game.Difficulty, offset float64, bpms []game.BPM) (*game.Chart, error) {
	// Start time of first note
	secs := offset
	currentBeat := 0.0

	notes := []*game.Note{}
	var mineCount, holdCount, noteCount int64
	noteCounts := make([]int64, difficulty.NKeys)
	measures := []*game.Measure{}

	for _, block := range strings.Split(difficulty.Section, ",") {
		lines := []string{}
		for _, l := range strings.Split(block, "\n") {
			if i := strings.Index(l, "//"); i >= 0 {
				l = l[:i]
			}
			l = strings.TrimSpace(l)
			if isRow(l, difficulty.NKeys) {
				lines = append(lines, l)
			}
		}
		if len(lines) == 0 {
			continue
		}

		measures = append(measures, &game.Measure{Denom: 1, Time: seconds(secs)})

		// Beat count is 4 per block
		lineCount := int64(len(lines))
		beatsPerNote := 4.0 / float64(lineCount) // 1/4, 1/8, 1/16, 1/24 etc

		for i, line := range lines {
			r := big.NewRat(int64(i*4), lineCount)
			denom := r.Denom().Int64()
			if denom == 1 && i != 0 {
				measures = append(measures, &game.Measure{Denom: 4, Time: seconds(secs)})
			}
			if denom == 2 || denom == 4 {
				measures = append(measures, &game.Measure{Denom: 8, Time: seconds(secs)})
			}
			secondsPerNote, err := p.getSecondsPerNote(bpms, currentBeat, beatsPerNote)
			if nil != err {
				return nil, err
			}

			hitCount := 0
			for col := 0; col < len(line); col++ {
				c := line[col]
				switch {
				case p.mapToNote(c):
					switch c {
					case 'M':
						mineCount++
					case '2', '4':
						holdCount++
						hitCount++
					default:
						hitCount++
					}
					notes = append(notes, &game.Note{
						Index:  uint8(col),
						Denom:  int(denom),
						IsMine: c == 'M',
						Time:   seconds(secs),
					})
				case c == '3':
					// Close the last hold head in this column
					for j := len(notes) - 1; j >= 0; j-- {
						if int(notes[j].Index) == col && !notes[j].IsMine {
							notes[j].TimeEnd = seconds(secs)
							break
						}
					}
				}
			}

			if hitCount > 0 {
				noteCounts[hitCount-1]++
				noteCount += int64(hitCount)
			}

			secs += secondsPerNote
			currentBeat += beatsPerNote
		}
	}

	noteCountsAsStrings := make([]string, difficulty.NKeys)
	for i, count := range noteCounts {
		noteCountsAsStrings[i] = strconv.FormatInt(count, 10)
	}

	return &game.Chart{
		Notes:               notes,
		Measures:            measures,
		NoteCounts:          noteCounts,
		NoteCountsAsStrings: noteCountsAsStrings,
		NoteCount:           noteCount,
		HoldCount:           holdCount,
		MineCount:           mineCount,
		Difficulty:          difficulty,
	}, nil
}
