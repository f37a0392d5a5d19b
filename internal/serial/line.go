// Package serial relays sensor lines from a USB serial board to the hub.
package serial

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"aeroponic_tower/internal/models"
)

// ErrSkip marks a line that carries no reading: blank or a "#" comment.
var ErrSkip = errors.New("no reading on line")

// ParseLine reads a board line such as "temp:22.5,humi:65.3,lumi:520".
// Unknown keys are ignored; all three readings must be present and numeric.
// Light is truncated toward zero.
func ParseLine(line string) (models.Payload, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil, ErrSkip
	}

	p := models.Payload{}
	for _, part := range strings.Split(line, ",") {
		key, raw, found := strings.Cut(part, ":")
		if !found {
			continue
		}
		switch key {
		case models.KeyTemp, models.KeyHumi:
			v, err := parseNumber(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			p[key] = v
		case models.KeyLumi:
			v, err := parseNumber(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
			if v >= math.MaxInt32 || v <= math.MinInt32 {
				return nil, fmt.Errorf("%s: %v out of range", key, v)
			}
			p[key] = int(v)
		}
	}

	for _, k := range []string{models.KeyTemp, models.KeyHumi, models.KeyLumi} {
		if !p.Has(k) {
			return nil, fmt.Errorf("missing %s in %q", k, line)
		}
	}
	return p, nil
}

func parseNumber(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not finite", raw)
	}
	return v, nil
}
