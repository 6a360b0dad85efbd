package emit

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"streamgauge/internal/core/domain"
	"streamgauge/pkg/utils"
)

// WriteSeriesFile writes a per-source time-series CSV
// (offset_s, bitrate_bps) into dir. Sample offsets use the configured
// sample interval, so the file plots directly onto a time axis.
// Sources without data are skipped.
func WriteSeriesFile(dir string, summary *domain.SourceSummary) (string, error) {
	if !summary.HasData {
		return "", nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	name := "series_" + utils.FileSafe(utils.TruncateString(summary.Address, 80)) + ".csv"
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteSeries(f, summary); err != nil {
		return "", err
	}
	return path, nil
}

// WriteSeries writes the successful-sample sequence, warm-up samples
// included, spaced by the summary's sample interval.
func WriteSeries(w io.Writer, summary *domain.SourceSummary) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"offset_s", "bitrate_bps"}); err != nil {
		return err
	}
	for i, bps := range summary.Series {
		row := []string{
			fmt.Sprintf("%.1f", float64(i)*summary.IntervalSeconds),
			fmt.Sprintf("%d", bps),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
