package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveRun(t *testing.T) {
	r := NewRecorder()

	r.ObserveRun(RunOutcome{
		CommunityID: "harbour",
		Source:      "native",
		Status:      "committed",
		Duration:    20 * time.Millisecond,
		Scores:      []float64{0.8, 0.6},
		Waitlist:    3,
	})
	r.ObserveRun(RunOutcome{
		CommunityID: "harbour",
		Source:      "native",
		Status:      "pending_review",
		Scores:      []float64{0.7},
		Waitlist:    1,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(r.RunsTotal.WithLabelValues("native", "committed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RunsTotal.WithLabelValues("native", "pending_review")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.GroupsFormed.WithLabelValues("native")))
	// The gauge holds the latest run
	assert.Equal(t, 1.0, testutil.ToFloat64(r.WaitlistSize.WithLabelValues("harbour")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.CompatibilityScore))
}

func TestRecorder_RunFailed(t *testing.T) {
	r := NewRecorder()

	r.RunFailed("external", "load")
	r.RunFailed("external", "load")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.RunsFailed.WithLabelValues("external", "load")))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.EmailsSent.Add(4)

	path := filepath.Join(t.TempDir(), "neighbourly.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "neighbourly_introduction_emails_sent_total 4")
}
