package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheus_CountsDecisions(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg)
	require.NoError(t, err)

	p.DecisionFinished("mage", "success", 2, 1, false)
	p.DecisionFinished("mage", "success", 3, 2, false)
	p.DecisionFinished("broken", "running", 100, 0, true)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.decisions.WithLabelValues("mage", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.timeouts.WithLabelValues("broken")))
	assert.Equal(t, 3.0, testutil.ToFloat64(p.actions))
}

func TestPrometheus_TurnsAndRounds(t *testing.T) {
	reg := prometheus.NewRegistry()
	p, err := NewPrometheus(reg)
	require.NoError(t, err)

	p.RoundBuilt(4)
	p.TurnTaken("enemies")
	p.TurnTaken("companions")
	p.TurnTaken("enemies")
	p.StaleSkipped()

	assert.Equal(t, 1.0, testutil.ToFloat64(p.rounds))
	assert.Equal(t, 2.0, testutil.ToFloat64(p.turns.WithLabelValues("enemies")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.stale))
}

func TestPrometheus_DoubleRegistrationFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheus(reg)
	require.NoError(t, err)

	_, err = NewPrometheus(reg)
	assert.Error(t, err)
}
