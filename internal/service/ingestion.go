package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"aeroponic_tower/internal/coerce"
	"aeroponic_tower/internal/metrics"
	"aeroponic_tower/internal/models"
	"aeroponic_tower/internal/repository"
)

// Domain errors for ingestion.
var (
	ErrMissingFields = errors.New("missing fields")
	ErrInvalidBody   = errors.New("invalid body")
)

// requiredKeys lists the payload keys that must be present, in report order.
var requiredKeys = []string{models.KeyTemp, models.KeyHumi, models.KeyLumi}

type sourceKey struct{}

// WithSource tags ctx with the transport a payload arrived on (metrics label).
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, sourceKey{}, source)
}

// SourceFrom returns the transport tag, "http" when none was set.
func SourceFrom(ctx context.Context) string {
	if s, ok := ctx.Value(sourceKey{}).(string); ok && s != "" {
		return s
	}
	return metrics.SourceHTTP
}

// DecodePayload parses a device body. An empty body is an empty payload; any
// JSON other than an object is ErrInvalidBody. Numbers are kept as json.Number
// so coercion sees the literal the device sent.
func DecodePayload(body []byte) (models.Payload, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return models.Payload{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var p models.Payload
	if err := dec.Decode(&p); err != nil {
		metrics.ReadingsRejected.WithLabelValues(metrics.ReasonInvalidBody).Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidBody, err)
	}
	if p == nil { // literal null
		metrics.ReadingsRejected.WithLabelValues(metrics.ReasonInvalidBody).Inc()
		return nil, fmt.Errorf("%w: expected a JSON object", ErrInvalidBody)
	}
	return p, nil
}

// MissingKeys returns the required keys absent from p.
func MissingKeys(p models.Payload) []string {
	var missing []string
	for _, k := range requiredKeys {
		if !p.Has(k) {
			missing = append(missing, k)
		}
	}
	return missing
}

type IngestionService struct {
	repo  repository.ReadingRepo
	clock Clock
}

func NewIngestionService(repo repository.ReadingRepo, clock Clock) *IngestionService {
	return &IngestionService{repo: repo, clock: clock}
}

// Ingest stores the reading carried by p and returns it.
// Every required key must be present; a present key whose value cannot be read
// as a number is stored as zero. The capture time is stamped here.
func (s *IngestionService) Ingest(ctx context.Context, p models.Payload) (models.Reading, error) {
	if err := ctx.Err(); err != nil {
		return models.Reading{}, err
	}
	if missing := MissingKeys(p); len(missing) > 0 {
		metrics.ReadingsRejected.WithLabelValues(metrics.ReasonMissingFields).Inc()
		return models.Reading{}, fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
	}

	r := models.Reading{
		Temperature: coerce.Float(p[models.KeyTemp], 0),
		Humidity:    coerce.Float(p[models.KeyHumi], 0),
		Light:       coerce.Int(p[models.KeyLumi], 0),
		CapturedAt:  s.clock.Stamp(),
	}
	s.repo.Append(r)

	_, n := s.repo.Snapshot()
	metrics.ReadingsIngested.WithLabelValues(SourceFrom(ctx)).Inc()
	metrics.HistorySize.Set(float64(n))
	return r, nil
}
