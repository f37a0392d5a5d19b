package dashboard

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	exportTitle = "AEROPONIC TOWER - DATA EXPORT"
	utf8BOM     = "\ufeff"
)

var exportSections = [metricCount]struct {
	title  string
	header string
}{
	Temperature: {"TEMPERATURE", "Time,Temperature (°C),Status"},
	Humidity:    {"HUMIDITY", "Time,Humidity (%),Status"},
	Light:       {"LIGHT", "Time,Light (lux),Status"},
}

// FileName is the export file name for day t, e.g. aeroponic_export_2025-06-14.csv.
func FileName(t time.Time) string {
	return "aeroponic_export_" + t.UTC().Format("2006-01-02") + ".csv"
}

// WriteCSV writes the history of st in the spreadsheet-friendly export layout.
// Time and status cells are always quoted; values never are.
func WriteCSV(w io.Writer, st State, exportedAt time.Time) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s%s\n", utf8BOM, exportTitle)
	fmt.Fprintf(bw, "Export date: %s\n\n", exportedAt.Format(timeLayout))

	for i, m := range Metrics {
		sec := exportSections[m]
		fmt.Fprintf(bw, "%s\n%s\n", sec.title, sec.header)
		for _, e := range st.History[m] {
			fmt.Fprintf(bw, "%s,%s,%s\n", quote(e.When), formatValue(m, e.Value), quote(e.Band.Label()))
		}
		if i < len(Metrics)-1 {
			bw.WriteString("\n")
		}
	}
	return bw.Flush()
}

// Export writes st to dir under FileName(now) and returns the path.
func Export(dir string, st State, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, FileName(now))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create export: %w", err)
	}
	if err := WriteCSV(f, st, now); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write export: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close export: %w", err)
	}
	return path, nil
}

func formatValue(m Metric, v float64) string {
	if m == Light {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
