package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := New()
	r.Decision(true)
	r.Decision(false)
	r.Decision(false)
	r.Dropped(2)
	r.Message(false, time.Millisecond)
	r.Message(true, time.Millisecond)

	assert.Equal(t, 3.0, testutil.ToFloat64(r.candidates))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.decisions.WithLabelValues("rejected")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.dropped))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.messages.WithLabelValues("failed")))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	require.NotPanics(t, func() {
		r.Decision(true)
		r.Dropped(1)
		r.Message(false, time.Second)
	})
	assert.Nil(t, r.Registry())
}

func TestHandler(t *testing.T) {
	r := New()
	r.Decision(true)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Contains(t, rec.Body.String(), "phrasemine_decisions_total")
}
