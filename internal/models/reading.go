package models

// Reading is one accepted sensor sample.
type Reading struct {
	Temperature float64 `json:"temperature"` // °C
	Humidity    float64 `json:"humidity"`    // %
	Light       int     `json:"light"`       // lux
	CapturedAt  string  `json:"capturedAt"`  // display-formatted, server side
}

// HistoryEntry is a Reading stamped with its acceptance time in epoch milliseconds.
// The numeric stamp orders entries independently of the display string.
type HistoryEntry struct {
	Reading
	Timestamp int64 `json:"timestamp"`
}
