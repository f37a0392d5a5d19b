package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"aeroponic_tower/internal/models"
	"aeroponic_tower/internal/service"
)

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
	return m
}

func TestHealth(t *testing.T) {
	r := newTestRouter(&service.Service{})
	w := doJSON(t, r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	if got := decodeBody(t, w)["status"]; got != "ok" {
		t.Fatalf("want status ok, got %v", got)
	}
}

func TestUpdate_Success(t *testing.T) {
	in := &mockIngestion{reading: models.Reading{Temperature: 22.5, Humidity: 60, Light: 500, CapturedAt: "14/06/2025 09:30:05"}}
	r := newTestRouter(&service.Service{Ingestion: in})

	w := doJSON(t, r, http.MethodPost, "/update", `{"temp":"22.5","humi":60,"lumi":"500"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d body=%s", w.Code, w.Body.String())
	}
	var resp UpdateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "success" || resp.Message != "reading stored" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if resp.Data != in.reading {
		t.Fatalf("data mismatch: got %+v want %+v", resp.Data, in.reading)
	}
	if in.calls != 1 || in.lastSource != "http" {
		t.Fatalf("ingest calls=%d source=%q", in.calls, in.lastSource)
	}
	if got := in.lastPayload[models.KeyTemp]; got != "22.5" {
		t.Fatalf("payload temp forwarded as %#v", got)
	}
	if got, ok := in.lastPayload[models.KeyHumi].(json.Number); !ok || got.String() != "60" {
		t.Fatalf("payload humi forwarded as %#v", in.lastPayload[models.KeyHumi])
	}
}

func TestUpdate_MissingFields(t *testing.T) {
	in := &mockIngestion{err: fmt.Errorf("%w: lumi", service.ErrMissingFields)}
	r := newTestRouter(&service.Service{Ingestion: in})

	w := doJSON(t, r, http.MethodPost, "/update", `{"temp":20,"humi":50}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["error"] != "missing fields" {
		t.Fatalf("unexpected error: %v", body["error"])
	}
	received, ok := body["received"].(map[string]any)
	if !ok {
		t.Fatalf("received should echo the payload, got %#v", body["received"])
	}
	if received["temp"] != float64(20) || received["humi"] != float64(50) {
		t.Fatalf("received mismatch: %#v", received)
	}
	if _, ok := received["lumi"]; ok {
		t.Fatalf("received should not invent keys: %#v", received)
	}
}

func TestUpdate_InvalidBody(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"malformed", `{"temp":`},
		{"array", `[1,2,3]`},
		{"null", `null`},
		{"string", `"hello"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := &mockIngestion{}
			r := newTestRouter(&service.Service{Ingestion: in})
			w := doJSON(t, r, http.MethodPost, "/update", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("want 400, got %d", w.Code)
			}
			body := decodeBody(t, w)
			msg, _ := body["error"].(string)
			if !strings.HasPrefix(msg, "invalid body: ") {
				t.Fatalf("unexpected error: %q", msg)
			}
			if v, ok := body["received"]; !ok || v != nil {
				t.Fatalf("received should be null, got %#v (present=%v)", v, ok)
			}
			if in.calls != 0 {
				t.Fatalf("ingest must not run on invalid body")
			}
		})
	}
}

func TestUpdate_EmptyBodyIsEmptyPayload(t *testing.T) {
	in := &mockIngestion{err: fmt.Errorf("%w: temp, humi, lumi", service.ErrMissingFields)}
	r := newTestRouter(&service.Service{Ingestion: in})

	w := doJSON(t, r, http.MethodPost, "/update", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
	if in.calls != 1 || len(in.lastPayload) != 0 {
		t.Fatalf("want one call with empty payload, got calls=%d payload=%v", in.calls, in.lastPayload)
	}
	body := decodeBody(t, w)
	if received, ok := body["received"].(map[string]any); !ok || len(received) != 0 {
		t.Fatalf("received should be {}, got %#v", body["received"])
	}
}

func TestUpdate_UnexpectedError(t *testing.T) {
	in := &mockIngestion{err: errors.New("store unavailable")}
	r := newTestRouter(&service.Service{Ingestion: in})

	w := doJSON(t, r, http.MethodPost, "/update", `{"temp":1,"humi":2,"lumi":3}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["error"] != "server error" || body["details"] != "store unavailable" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestUpdate_PanicRecovered(t *testing.T) {
	in := &mockIngestion{panicOn: true}
	r := newTestRouter(&service.Service{Ingestion: in})

	w := doJSON(t, r, http.MethodPost, "/update", `{"temp":1,"humi":2,"lumi":3}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("want 500, got %d", w.Code)
	}
	body := decodeBody(t, w)
	if body["error"] != "server error" || body["details"] != "ingest exploded" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestUpdate_BodyTooLarge(t *testing.T) {
	in := &mockIngestion{}
	r := newTestRouter(&service.Service{Ingestion: in})

	big := `{"temp":"` + strings.Repeat("9", maxBodyBytes) + `","humi":1,"lumi":1}`
	w := doJSON(t, r, http.MethodPost, "/update", big)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", w.Code)
	}
	if in.calls != 0 {
		t.Fatalf("ingest must not run on oversized body")
	}
}

func TestCurrent(t *testing.T) {
	rd := &mockReadings{current: models.Reading{Temperature: 19.5, Humidity: 55, Light: 420, CapturedAt: "01/01/2025 00:00:00"}}
	r := newTestRouter(&service.Service{Readings: rd})

	w := doJSON(t, r, http.MethodGet, "/data", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var got models.Reading
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != rd.current {
		t.Fatalf("got %+v want %+v", got, rd.current)
	}
	for _, k := range []string{"temperature", "humidity", "light", "capturedAt"} {
		if _, ok := decodeBody(t, w)[k]; !ok {
			t.Fatalf("missing key %q in %s", k, w.Body.String())
		}
	}
}

func TestHistory_LimitParsing(t *testing.T) {
	cases := []struct {
		query string
		want  int
	}{
		{"", 0},
		{"?limit=3", 3},
		{"?limit=0", 0},
		{"?limit=-4", 0},
		{"?limit=abc", 0},
		{"?limit=7xyz", 7},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			rd := &mockReadings{}
			r := newTestRouter(&service.Service{Readings: rd})
			w := doJSON(t, r, http.MethodGet, "/historique"+tc.query, "")
			if w.Code != http.StatusOK {
				t.Fatalf("want 200, got %d", w.Code)
			}
			if rd.lastLimit != tc.want {
				t.Fatalf("limit: got %d want %d", rd.lastLimit, tc.want)
			}
			if strings.TrimSpace(w.Body.String()) != "[]" {
				t.Fatalf("empty history should encode as [], got %s", w.Body.String())
			}
		})
	}
}

func TestHistory_Entries(t *testing.T) {
	rd := &mockReadings{history: []models.HistoryEntry{
		{Reading: models.Reading{Temperature: 2}, Timestamp: 2000},
		{Reading: models.Reading{Temperature: 1}, Timestamp: 1000},
	}}
	r := newTestRouter(&service.Service{Readings: rd})

	w := doJSON(t, r, http.MethodGet, "/historique", "")
	var got []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0]["timestamp"] != float64(2000) || got[0]["temperature"] != float64(2) {
		t.Fatalf("unexpected history: %v", got)
	}
}

func TestStatus(t *testing.T) {
	diag := &mockDiagnostics{status: models.Status{
		Status:       "online",
		Uptime:       12.5,
		LastReading:  models.Reading{Temperature: 21},
		ReadingCount: 4,
		MemoryUsed:   "7 MB",
	}}
	r := newTestRouter(&service.Service{Diagnostics: diag})

	w := doJSON(t, r, http.MethodGet, "/status", "")
	if w.Code != http.StatusOK {
		t.Fatalf("want 200, got %d", w.Code)
	}
	var got models.Status
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != diag.status {
		t.Fatalf("got %+v want %+v", got, diag.status)
	}
}
