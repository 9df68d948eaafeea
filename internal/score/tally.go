package score

import (
	"math"
	"time"

	"git.lost.host/meutraa/beatlane/internal/field"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Points prometheus.Counter
	Hits   prometheus.Counter
	Misses prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Points: factory.NewCounter(prometheus.CounterOpts{
			Name: "beatlane_points_total",
			Help: "Points scored by hit beats.",
		}),
		Hits: factory.NewCounter(prometheus.CounterOpts{
			Name: "beatlane_hits_total",
			Help: "Beats hit inside their deadzone.",
		}),
		Misses: factory.NewCounter(prometheus.CounterOpts{
			Name: "beatlane_misses_total",
			Help: "Beats that travelled past their deadzone.",
		}),
	}
}

// Tally is the score reporter beats write to. It also keeps the per tier
// counts and the timing statistics of the hits recorded from field frames.
type Tally struct {
	Points int
	Hits   int
	Misses int
	Counts []int // per judgement tier, the last one counts misses

	TotalError    time.Duration
	sumOfDistance time.Duration
	offsets       []time.Duration
	Mean, Stdev   float64 // nanoseconds

	metrics *Metrics
}

func NewTally(tiers int, metrics *Metrics) *Tally {
	return &Tally{
		Counts:  make([]int, tiers),
		metrics: metrics,
	}
}

func (t *Tally) ReportScore(delta int) {
	t.Points += delta
	t.Hits++
	if nil != t.metrics {
		t.metrics.Points.Add(float64(delta))
		t.metrics.Hits.Inc()
	}
}

func (t *Tally) ReportMiss() {
	t.Misses++
	if nil != t.metrics {
		t.metrics.Misses.Inc()
	}
}

func abs(x time.Duration) time.Duration {
	if x < 0 {
		return -x
	}
	return x
}

// Record folds the judged events of a frame into the statistics.
func (t *Tally) Record(frame field.Frame) {
	for _, e := range frame.Hits {
		if e.Tier >= 0 && e.Tier < len(t.Counts) {
			t.Counts[e.Tier]++
		}
		t.TotalError += abs(e.Offset)
		t.sumOfDistance += e.Offset
		t.offsets = append(t.offsets, e.Offset)
	}
	if len(t.Counts) > 0 {
		t.Counts[len(t.Counts)-1] += len(frame.Misses)
	}
	if len(frame.Hits) == 0 {
		return
	}

	n := float64(len(t.offsets))
	t.Mean = float64(t.sumOfDistance) / n
	if n < 2 {
		return
	}
	t.Stdev = 0
	for _, o := range t.offsets {
		xi := float64(o) - t.Mean
		t.Stdev += xi * xi
	}
	t.Stdev /= n - 1
	t.Stdev = math.Sqrt(t.Stdev)
}
