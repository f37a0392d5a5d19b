// Package client talks to the hub over HTTP: devices and the simulator post
// readings, the dashboard polls the current one.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"aeroponic_tower/internal/coerce"
	"aeroponic_tower/internal/logger"
	"aeroponic_tower/internal/metrics"
	"aeroponic_tower/internal/models"
)

const userAgent = "aeroponic-tower-client/1"

// Client wraps an http.Client with a mandatory timeout and a base URL.
type Client struct {
	client  *http.Client
	baseURL string
	log     *logger.Logger
	now     func() time.Time
}

// New returns a client for the hub at baseURL. Requests are timed in the
// client duration histogram.
func New(baseURL string, timeout time.Duration, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		client: &http.Client{
			Timeout:   timeout,
			Transport: metrics.InstrumentRoundTripper(http.DefaultTransport),
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
		now:     time.Now,
	}
}

// BaseURL returns the hub address requests are sent to.
func (c *Client) BaseURL() string { return c.baseURL }

type updateResponse struct {
	Status   string          `json:"status"`
	Data     models.Reading  `json:"data"`
	Error    string          `json:"error"`
	Details  string          `json:"details"`
	Received json.RawMessage `json:"received"`
}

// PostReading sends p to /update and returns the reading the hub stored.
func (c *Client) PostReading(ctx context.Context, p models.Payload) (models.Reading, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return models.Reading{}, fmt.Errorf("encode payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/update", bytes.NewReader(body))
	if err != nil {
		return models.Reading{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	raw, code, err := c.do(req)
	if err != nil {
		return models.Reading{}, err
	}

	var resp updateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return models.Reading{}, fmt.Errorf("%w: decode update response: %v", UnexpectedError, err)
	}
	switch {
	case code == http.StatusOK:
		return resp.Data, nil
	case code == http.StatusBadRequest:
		return models.Reading{}, fmt.Errorf("%w: %s", RejectedError, resp.Error)
	default:
		c.log.Warnw("client_unexpected_status", "code", code, "error", resp.Error, "details", resp.Details)
		return models.Reading{}, fmt.Errorf("%w: status %d: %s", UnexpectedError, code, resp.Details)
	}
}

// Send implements the simulator sink.
func (c *Client) Send(ctx context.Context, p models.Payload) error {
	_, err := c.PostReading(ctx, p)
	return err
}

// Current fetches /data. The body must carry a temperature key; the values are
// coerced the same way the hub coerces device input.
func (c *Client) Current(ctx context.Context) (models.Reading, error) {
	// Cache buster for proxies between the dashboard and the hub.
	u := c.baseURL + "/data?t=" + strconv.FormatInt(c.now().UnixMilli(), 10)
	raw, err := c.get(ctx, u)
	if err != nil {
		return models.Reading{}, err
	}
	return DecodeReading(raw)
}

// DecodeReading reads a /data body loosely.
func DecodeReading(raw []byte) (models.Reading, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return models.Reading{}, fmt.Errorf("%w: %v", InvalidReadingError, err)
	}
	if _, ok := m["temperature"]; !ok {
		return models.Reading{}, InvalidReadingError
	}
	r := models.Reading{
		Temperature: coerce.Float(m["temperature"], 0),
		Humidity:    coerce.Float(m["humidity"], 0),
		Light:       coerce.Int(m["light"], 0),
	}
	if s, ok := m["capturedAt"].(string); ok {
		r.CapturedAt = s
	}
	return r, nil
}

// History fetches /historique; limit <= 0 asks for everything.
func (c *Client) History(ctx context.Context, limit int) ([]models.HistoryEntry, error) {
	u := c.baseURL + "/historique"
	if limit > 0 {
		u += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	raw, err := c.get(ctx, u)
	if err != nil {
		return nil, err
	}
	var out []models.HistoryEntry
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: decode history: %v", UnexpectedError, err)
	}
	return out, nil
}

// Status fetches /status.
func (c *Client) Status(ctx context.Context) (models.Status, error) {
	raw, err := c.get(ctx, c.baseURL+"/status")
	if err != nil {
		return models.Status{}, err
	}
	var st models.Status
	if err := json.Unmarshal(raw, &st); err != nil {
		return models.Status{}, fmt.Errorf("%w: decode status: %v", UnexpectedError, err)
	}
	return st, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	raw, code, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		c.log.Debugw("client_unexpected_status", "url", u, "code", code)
		return nil, fmt.Errorf("%w: status %d", UnexpectedError, code)
	}
	return raw, nil
}

func (c *Client) do(req *http.Request) ([]byte, int, error) {
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) && uerr.Timeout() {
			return nil, 0, TimeoutError
		}
		return nil, 0, fmt.Errorf("%w: %v", UnexpectedError, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read body: %v", UnexpectedError, err)
	}
	return raw, resp.StatusCode, nil
}
