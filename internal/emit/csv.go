// Package emit renders run results: a summary CSV and per-source
// time-series files sufficient to plot bitrate over time.
package emit

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"streamgauge/internal/core/domain"
)

// WriteSummaryFile writes the summary CSV to dir/name, creating the
// directory when needed.
func WriteSummaryFile(dir, name string, summaries []*domain.SourceSummary) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	return WriteSummaries(f, summaries)
}

// WriteSummaries writes one CSV row per source that produced data, with
// bitrates in kilobits per second formatted to two decimals.
func WriteSummaries(w io.Writer, summaries []*domain.SourceSummary) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{
		"address",
		"mean_kbps",
		"stddev_kbps",
		"min_kbps",
		"max_kbps",
		"samples",
		"measured_at",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, s := range summaries {
		if !s.HasData {
			continue
		}
		row := []string{
			s.Address,
			kbps(s.MeanBps),
			kbps(s.StddevBps),
			kbps(float64(s.MinBps)),
			kbps(float64(s.MaxBps)),
			fmt.Sprintf("%d", s.SampleCount),
			s.MeasuredAt.Format(time.RFC3339),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func kbps(bps float64) string {
	return fmt.Sprintf("%.2f", bps/1000.0)
}
