package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewVoteMetrics(reg, "ideaboard")

	m.ObserveToggle(OutcomeCast, 3*time.Millisecond)
	m.ObserveToggle(OutcomeCast, time.Millisecond)
	m.ObserveToggle(OutcomeRetracted, time.Millisecond)
	m.ObserveRace(RaceDuplicate)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Toggles.WithLabelValues(OutcomeCast)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Toggles.WithLabelValues(OutcomeRetracted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Races.WithLabelValues(RaceDuplicate)))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "ideaboard_votes_toggled_total")
	assert.Contains(t, names, "ideaboard_vote_races_total")
	assert.Contains(t, names, "ideaboard_vote_toggle_duration_seconds")
}

func TestVoteMetrics_NilIsSafe(t *testing.T) {
	var m *VoteMetrics
	assert.NotPanics(t, func() {
		m.ObserveToggle(OutcomeCast, time.Millisecond)
		m.ObserveRace(RaceNotFound)
	})
}

func TestHTTPMetrics_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg, "ideaboard")

	m.ObserveRequest("POST", "/api/ideas/{ideaID}/vote", 200, 5*time.Millisecond)
	m.ObserveRequest("POST", "/api/ideas/{ideaID}/vote", 200, 5*time.Millisecond)
	m.ObserveRequest("GET", "/api/ideas", 500, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Requests.WithLabelValues("POST", "/api/ideas/{ideaID}/vote", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("GET", "/api/ideas", "500")))

	var nilMetrics *HTTPMetrics
	assert.NotPanics(t, func() { nilMetrics.ObserveRequest("GET", "/", 200, time.Millisecond) })
}
