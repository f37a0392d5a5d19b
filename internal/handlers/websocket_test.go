package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"aeroponic_tower/internal/models"
	"aeroponic_tower/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// --- parseInterval unit tests ---

func TestParseInterval(t *testing.T) {
	h := NewHandler(&service.Service{}, nil)

	cases := []struct {
		name string
		u    string
		want time.Duration
	}{
		{"default_when_missing", "/ws", 5 * time.Second},
		{"interval_string_valid", "/ws?interval=200ms", 200 * time.Millisecond},
		{"interval_ms_valid", "/ws?interval_ms=150", 150 * time.Millisecond},
		{"interval_at_max", "/ws?interval=60s", 60 * time.Second},
		{"interval_too_large", "/ws?interval=2m", 5 * time.Second},
		{"interval_ms_too_large", "/ws?interval_ms=60001", 5 * time.Second},
		{"interval_negative", "/ws?interval=-1s", 5 * time.Second},
		{"interval_invalid_string", "/ws?interval=bogus", 5 * time.Second},
		{"interval_ms_invalid", "/ws?interval_ms=NaN", 5 * time.Second},
		{"both_present_interval_wins", "/ws?interval=2s&interval_ms=150", 2 * time.Second},
		{"both_present_invalid_interval_ms_used", "/ws?interval=bogus&interval_ms=250", 250 * time.Millisecond},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tc.u, nil)
			c, _ := gin.CreateTestContext(w)
			c.Request = req
			got := h.parseInterval(c)
			if got != tc.want {
				t.Fatalf("got %v, want %v for %s", got, tc.want, tc.u)
			}
		})
	}
}

// --- websocket integration tests ---

type wsTestEnvelope struct {
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

func dialWS(t *testing.T, s *service.Service, query string) *websocket.Conn {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(s, nil)
	r.GET("/ws", h.wsConnect)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	u, _ := url.Parse(srv.URL)
	u.Scheme = "ws"
	u.Path = "/ws"
	u.RawQuery = query

	dialer := websocket.Dialer{HandshakeTimeout: 2 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		t.Fatalf("dial error: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readReading(t *testing.T, conn *websocket.Conn) models.Reading {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	var env wsTestEnvelope
	if err := conn.ReadJSON(&env); err != nil {
		t.Fatalf("read: %v", err)
	}
	if env.Type != "reading" || len(env.Data) == 0 {
		t.Fatalf("bad envelope: %+v", env)
	}
	var r models.Reading
	if err := json.Unmarshal(env.Data, &r); err != nil {
		t.Fatalf("unmarshal reading: %v", err)
	}
	return r
}

func TestWebSocket_ReadingStream_InitialAndPeriodic(t *testing.T) {
	rd := &mockReadings{current: models.Reading{Temperature: 21.5, Humidity: 62, Light: 510, CapturedAt: "14/06/2025 09:30:05"}}
	conn := dialWS(t, &service.Service{Readings: rd}, "interval_ms=20")

	if got := readReading(t, conn); got != rd.current {
		t.Fatalf("initial reading %+v, want %+v", got, rd.current)
	}

	next := models.Reading{Temperature: 24, Humidity: 70, Light: 820, CapturedAt: "14/06/2025 09:30:10"}
	rd.set(next)

	// A tick already in flight may still carry the old reading.
	deadline := time.Now().Add(1 * time.Second)
	for time.Now().Before(deadline) {
		if readReading(t, conn) == next {
			return
		}
	}
	t.Fatalf("updated reading never pushed")
}

func TestWebSocket_ClientCloseEndsStream(t *testing.T) {
	rd := &mockReadings{}
	conn := dialWS(t, &service.Service{Readings: rd}, "interval_ms=10")
	readReading(t, conn)

	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye")
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second)); err != nil {
		t.Fatalf("write close: %v", err)
	}

	// Drain until the server acknowledges the close.
	_ = conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) && !websocket.IsUnexpectedCloseError(err) {
				t.Fatalf("expected close, got %v", err)
			}
			return
		}
	}
}
