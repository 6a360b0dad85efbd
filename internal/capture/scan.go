package capture

import (
	"bufio"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"streamgauge/internal/core/domain"
)

// ScanOutcome tags what the diagnostic-text scanner found.
type ScanOutcome int

const (
	// ScanUnparsed means the text carried neither a bitrate nor a known
	// error signature.
	ScanUnparsed ScanOutcome = iota
	// ScanBitrate means an explicit or derived bitrate was found.
	ScanBitrate
	// ScanKnownError means an error signature was found; scanning stopped
	// at the matching line.
	ScanKnownError
)

// ScanResult is the tagged outcome of scanning a capture tool's combined
// diagnostic stream.
type ScanResult struct {
	Outcome    ScanOutcome
	BitrateBps int64
	Error      domain.FailureKind
}

// Pre-compiled patterns for the capture tool's progress lines.
var (
	// bitrate= 467.3kbits/s (progress lines), bitrate=N/A when unknown
	reBitrateToken = regexp.MustCompile(`bitrate=\s*([0-9]+(?:\.[0-9]+)?)\s*kbits/s`)

	// size=    1024kB / Lsize= 2048KiB cumulative payload counters
	reSizeToken = regexp.MustCompile(`L?size=\s*([0-9]+)\s*(kB|KiB|KB|B)`)

	// time=00:00:09.97 elapsed stream time on the same progress lines
	reTimeToken = regexp.MustCompile(`time=\s*([0-9]+):([0-9]{2}):([0-9]{2}(?:\.[0-9]+)?)`)
)

// errorSignatures maps known substrings of the tool's diagnostics to a
// failure classification. Matching any of these short-circuits the scan:
// once the tool has printed one, no later line can carry a usable bitrate.
var errorSignatures = []struct {
	substr string
	kind   domain.FailureKind
}{
	{"connection refused", domain.FailureRefused},
	{"invalid data found", domain.FailureInvalidData},
	{"401 unauthorized", domain.FailureUnauthorized},
	{"unauthorized", domain.FailureUnauthorized},
	{"404 not found", domain.FailureNotFound},
	{"not found", domain.FailureNotFound},
	{"connection timed out", domain.FailureTimeout},
	{"operation timed out", domain.FailureTimeout},
	{"timeout", domain.FailureTimeout},
}

// ClassifyError returns the failure kind matching the first known error
// signature in text, or FailureUnknown when none matches.
func ClassifyError(text string) domain.FailureKind {
	lower := strings.ToLower(text)
	for _, sig := range errorSignatures {
		if strings.Contains(lower, sig.substr) {
			return sig.kind
		}
	}
	return domain.FailureUnknown
}

// ScanCaptureOutput scans the tool's combined diagnostic stream line by
// line for a self-reported throughput figure.
//
// The first explicit "bitrate=<v>kbits/s" token wins. Lines carrying a
// known error signature short-circuit the scan immediately. When no
// explicit token exists and allowDerived is set, a cumulative byte counter
// divided by the elapsed stream time (falling back to the configured
// segment duration) is accepted as a derived estimate.
func ScanCaptureOutput(text string, allowDerived bool, segmentDuration time.Duration) ScanResult {
	var (
		lastBytes   int64
		lastElapsed time.Duration
	)

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		lower := strings.ToLower(line)

		for _, sig := range errorSignatures {
			if strings.Contains(lower, sig.substr) {
				return ScanResult{Outcome: ScanKnownError, Error: sig.kind}
			}
		}

		if m := reBitrateToken.FindStringSubmatch(line); m != nil {
			kbits, err := strconv.ParseFloat(m[1], 64)
			if err == nil && kbits > 0 {
				// Round, don't truncate: 467.3 kbit is 467299.999... in
				// float64 and must report as 467300.
				return ScanResult{Outcome: ScanBitrate, BitrateBps: int64(math.Round(kbits * 1000))}
			}
		}

		if m := reSizeToken.FindStringSubmatch(line); m != nil {
			n, err := strconv.ParseInt(m[1], 10, 64)
			if err == nil {
				switch m[2] {
				case "kB", "KB":
					n *= 1000
				case "KiB":
					n *= 1024
				}
				lastBytes = n
			}
		}
		if m := reTimeToken.FindStringSubmatch(line); m != nil {
			h, _ := strconv.Atoi(m[1])
			min, _ := strconv.Atoi(m[2])
			sec, _ := strconv.ParseFloat(m[3], 64)
			lastElapsed = time.Duration((float64(h)*3600 + float64(min)*60 + sec) * float64(time.Second))
		}
	}

	if allowDerived && lastBytes > 0 {
		elapsed := lastElapsed
		if elapsed <= 0 {
			elapsed = segmentDuration
		}
		if elapsed > 0 {
			bps := int64(float64(lastBytes*8) / elapsed.Seconds())
			if bps > 0 {
				return ScanResult{Outcome: ScanBitrate, BitrateBps: bps}
			}
		}
	}

	return ScanResult{Outcome: ScanUnparsed}
}
