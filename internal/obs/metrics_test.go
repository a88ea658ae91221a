package obs_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-enquiry-service/internal/obs"
)

func TestInstrumentRecordsRoutePattern(t *testing.T) {
	m := obs.NewMetrics(prometheus.NewRegistry())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /items/{id}", m.Instrument(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	for _, id := range []string{"1", "2"} {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		require.Equal(t, http.StatusTeapot, rec.Code)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="GET /items/{id}",status="418"} 2`)
}

func TestFlowCounters(t *testing.T) {
	m := obs.NewMetrics(prometheus.NewRegistry())
	m.CodesIssued.Inc()
	m.TokenExchanges.WithLabelValues(obs.ResultOK).Inc()
	m.TokenExchanges.WithLabelValues(obs.ResultRejected).Add(2)

	require.Equal(t, 1.0, testutil.ToFloat64(m.CodesIssued))
	require.Equal(t, 2.0, testutil.ToFloat64(m.TokenExchanges.WithLabelValues(obs.ResultRejected)))
}

func TestNewRequestIDIsULID(t *testing.T) {
	a, b := obs.NewRequestID(), obs.NewRequestID()
	require.NotEqual(t, a, b)
	_, err := ulid.ParseStrict(a)
	require.NoError(t, err)
	require.Less(t, a, b)
}

func TestSetupLoggingJSON(t *testing.T) {
	var buf bytes.Buffer
	obs.SetupLoggingTo(&buf, "PROD", "warn")
	t.Cleanup(func() { obs.SetupLogging("DEV", "info") })

	log.Info().Msg("dropped")
	log.Warn().Str("client_id", "c1").Msg("kept")

	out := buf.String()
	require.False(t, strings.Contains(out, "dropped"))
	require.Contains(t, out, `"client_id":"c1"`)
}
