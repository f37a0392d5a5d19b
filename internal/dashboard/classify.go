// Package dashboard polls the hub for the current reading, keeps a short
// per-metric history while connected and renders it in the terminal.
package dashboard

// Metric identifies one of the three sensor channels.
type Metric int

const (
	Temperature Metric = iota
	Humidity
	Light

	metricCount
)

// Metrics lists every metric in display order.
var Metrics = [metricCount]Metric{Temperature, Humidity, Light}

var metricNames = [metricCount]string{"temperature", "humidity", "light"}

func (m Metric) String() string {
	if m < 0 || m >= metricCount {
		return "unknown"
	}
	return metricNames[m]
}

// Band is the display classification of a value.
type Band int

const (
	BandNormal Band = iota
	BandLow
	BandHigh
)

func (b Band) String() string {
	switch b {
	case BandLow:
		return "low"
	case BandHigh:
		return "high"
	default:
		return "normal"
	}
}

// Label is the capitalized form shown in tables and exports.
func (b Band) Label() string {
	switch b {
	case BandLow:
		return "Low"
	case BandHigh:
		return "High"
	default:
		return "Normal"
	}
}

// Range holds the inclusive normal interval of a metric.
type Range struct {
	Low  float64
	High float64
}

// Ranges are the normal intervals: 18–26 °C, 50–75 % and 300–800 lux.
var Ranges = [metricCount]Range{
	Temperature: {Low: 18, High: 26},
	Humidity:    {Low: 50, High: 75},
	Light:       {Low: 300, High: 800},
}

// Classify bands v for metric m. Bounds are normal.
func Classify(m Metric, v float64) Band {
	r := Ranges[m]
	switch {
	case v < r.Low:
		return BandLow
	case v > r.High:
		return BandHigh
	default:
		return BandNormal
	}
}
