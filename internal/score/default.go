package score

import (
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"git.lost.host/meutraa/beatlane/internal/game"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

type DefaultScorer struct {
	db *sql.DB

	// Judgement tiers and tick step used for replays
	Judgements []game.Judgement
	Step       time.Duration

	Logger *log.Logger
}

func (s *DefaultScorer) logger() *log.Logger {
	if s.Logger == nil {
		s.Logger = log.New(io.Discard, "", 0)
	}
	return s.Logger
}

type InputsCompact struct {
	Index int
	Times []time.Duration
}

func compactInputs(inputs []game.Input) []InputsCompact {
	colCount := 0
	for _, i := range inputs {
		if i.Index+1 > colCount {
			colCount = i.Index + 1
		}
	}
	ins := make([]InputsCompact, colCount)
	for i := range ins {
		ins[i].Index = i
		ins[i].Times = []time.Duration{}
	}
	for _, i := range inputs {
		ins[i.Index].Times = append(ins[i.Index].Times, i.HitTime)
	}
	return ins
}

func uncompactInputs(inputs []InputsCompact) []game.Input {
	ins := []game.Input{}
	for _, i := range inputs {
		for _, t := range i.Times {
			ins = append(ins, game.Input{Index: i.Index, HitTime: t})
		}
	}
	return ins
}

func (s *DefaultScorer) Init(path string) error {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("unable to open score database: %w", err)
	}

	initStatement := `
	create table if not exists scores
	  (
		  id text not null primary key,
		  sum text,
		  rate real,
		  travel integer,
		  deadzone real,
		  played integer,
		  inputs blob
	  );
	create index if not exists scores_sum on scores(sum);
	`
	if _, err = db.Exec(initStatement); nil != err {
		if cerr := db.Close(); nil != cerr {
			s.logger().Println("unable to close score database", cerr)
		}
		return fmt.Errorf("unable to create score table: %w", err)
	}

	s.db = db
	return nil
}

func (s *DefaultScorer) Deinit() {
	if nil != s.db {
		if err := s.db.Close(); nil != err {
			s.logger().Println("unable to close score database", err)
		}
		s.db = nil
	}
}

func (s *DefaultScorer) hashChart(c *game.Chart) string {
	sum := sha256.Sum256([]byte(c.Difficulty.Section))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func (s *DefaultScorer) Save(c *game.Chart, inputs []game.Input, settings Settings) (uuid.UUID, error) {
	data, err := json.Marshal(compactInputs(inputs))
	if nil != err {
		return uuid.Nil, fmt.Errorf("unable to marshal inputs: %w", err)
	}
	id := uuid.New()
	_, err = s.db.Exec(
		"insert into scores(id, sum, rate, travel, deadzone, played, inputs) values(?, ?, ?, ?, ?, ?, ?)",
		id.String(), s.hashChart(c), settings.Rate, int64(settings.Travel), settings.Deadzone, time.Now().UnixNano(), data,
	)
	if nil != err {
		return uuid.Nil, fmt.Errorf("unable to save score: %w", err)
	}
	return id, nil
}

func (s *DefaultScorer) Load(c *game.Chart) ([]History, error) {
	histories := []History{}
	rows, err := s.db.Query(
		"select id, sum, rate, travel, deadzone, played, inputs from scores where sum = ? order by played",
		s.hashChart(c),
	)
	if nil != err {
		return histories, fmt.Errorf("unable to load scores: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, sum string
		var rate, deadzone float64
		var travel, played int64
		var data []byte
		if err := rows.Scan(&id, &sum, &rate, &travel, &deadzone, &played, &data); nil != err {
			return histories, fmt.Errorf("unable to read score: %w", err)
		}
		uid, err := uuid.Parse(id)
		if nil != err {
			s.logger().Println("skipping score with bad id", id, err)
			continue
		}
		var ns []InputsCompact
		if err := json.Unmarshal(data, &ns); nil != err {
			s.logger().Println("unable to unmarshal input history", id, err)
			continue
		}
		histories = append(histories, History{
			ID:     uid,
			Sum:    sum,
			Played: time.Unix(0, played),
			Inputs: uncompactInputs(ns),
			Settings: Settings{
				Rate:     rate,
				Travel:   time.Duration(travel),
				Deadzone: deadzone,
			},
		})
	}
	return histories, rows.Err()
}

func (s *DefaultScorer) Score(chart *game.Chart, history *History) (Score, error) {
	step := s.Step
	if step <= 0 {
		step = DefaultStep
	}
	cfg := ReplayConfig(chart, history.Settings, s.Judgements)
	cfg.Logger = s.logger()
	t, err := Replay(chart, history.Inputs, cfg, step)
	if nil != err {
		return Score{}, err
	}
	return Score{
		Points:     t.Points,
		MissCount:  t.Misses,
		TotalError: t.TotalError,
	}, nil
}
