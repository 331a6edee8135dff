package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives the observable events of the decision core.
type Recorder interface {
	DecisionFinished(tree, status string, iterations, actions int, abandoned bool)
	TurnTaken(side string)
	RoundBuilt(size int)
	StaleSkipped()
}

// Nop drops everything.
type Nop struct{}

func (Nop) DecisionFinished(string, string, int, int, bool) {}
func (Nop) TurnTaken(string)                                {}
func (Nop) RoundBuilt(int)                                  {}
func (Nop) StaleSkipped()                                   {}

var _ Recorder = (*Prometheus)(nil)

// Prometheus exports the core's counters through client_golang collectors.
type Prometheus struct {
	decisions  *prometheus.CounterVec
	timeouts   *prometheus.CounterVec
	iterations *prometheus.HistogramVec
	actions    prometheus.Counter
	turns      *prometheus.CounterVec
	rounds     prometheus.Counter
	roundSize  prometheus.Histogram
	stale      prometheus.Counter
}

// NewPrometheus creates the collectors and registers them on reg.
func NewPrometheus(reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skirmish",
			Name:      "decisions_total",
			Help:      "Finished decisions by tree and terminal status.",
		}, []string{"tree", "status"}),
		timeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skirmish",
			Name:      "decision_timeouts_total",
			Help:      "Decisions abandoned at the iteration cap.",
		}, []string{"tree"}),
		iterations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "skirmish",
			Name:      "decision_iterations",
			Help:      "Process calls needed to finish a decision.",
			Buckets:   []float64{1, 2, 3, 4, 6, 8, 12, 16, 32, 64, 100},
		}, []string{"tree"}),
		actions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skirmish",
			Name:      "actions_total",
			Help:      "Action nodes fired across all decisions.",
		}),
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "skirmish",
			Name:      "turns_total",
			Help:      "Turns handed out by the scheduler per side.",
		}, []string{"side"}),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skirmish",
			Name:      "rounds_total",
			Help:      "Rounds built by the scheduler.",
		}),
		roundSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "skirmish",
			Name:      "round_size",
			Help:      "Combatants queued per round.",
			Buckets:   prometheus.LinearBuckets(1, 1, 12),
		}),
		stale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "skirmish",
			Name:      "stale_turns_skipped_total",
			Help:      "Queued combatants that died before their turn came up.",
		}),
	}
	collectors := []prometheus.Collector{
		p.decisions, p.timeouts, p.iterations, p.actions,
		p.turns, p.rounds, p.roundSize, p.stale,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) DecisionFinished(tree, status string, iterations, actions int, abandoned bool) {
	p.decisions.WithLabelValues(tree, status).Inc()
	p.iterations.WithLabelValues(tree).Observe(float64(iterations))
	p.actions.Add(float64(actions))
	if abandoned {
		p.timeouts.WithLabelValues(tree).Inc()
	}
}

func (p *Prometheus) TurnTaken(side string) {
	p.turns.WithLabelValues(side).Inc()
}

func (p *Prometheus) RoundBuilt(size int) {
	p.rounds.Inc()
	p.roundSize.Observe(float64(size))
}

func (p *Prometheus) StaleSkipped() {
	p.stale.Inc()
}
