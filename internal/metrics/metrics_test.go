package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_RecordsAndExposes(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	ReadingsIngested.WithLabelValues(SourceHTTP).Inc()
	if got := testutil.ToFloat64(ReadingsIngested.WithLabelValues(SourceHTTP)); got < 1 {
		t.Fatalf("ingested counter = %v, want >= 1", got)
	}

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(w.Body)
	for _, want := range []string{
		"tower_server_request_duration_seconds",
		`code="418"`,
		"tower_readings_ingested_total",
		"tower_history_size",
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestInstrumentRoundTripper(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cl := &http.Client{Transport: InstrumentRoundTripper(http.DefaultTransport)}
	resp, err := cl.Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()

	if n := testutil.CollectAndCount(clientDuration); n < 1 {
		t.Fatalf("client histogram has %d series, want >= 1", n)
	}
}
