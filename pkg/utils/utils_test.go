package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRunID(t *testing.T) {
	id := GenerateRunID()
	assert.True(t, strings.HasPrefix(id, "run_"))
	assert.NotEqual(t, id, GenerateRunID())
}

func TestGenerateSummaryID(t *testing.T) {
	assert.NotEmpty(t, GenerateSummaryID())
	assert.NotEqual(t, GenerateSummaryID(), GenerateSummaryID())
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello \x00 "))
	assert.Equal(t, "a\tb", SanitizeString("a\tb"))
}

func TestFileSafe(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain", input: "camera-01.local", want: "camera-01.local"},
		{name: "url", input: "rtsp://user@host:554/cam", want: "rtsp___user_host_554_cam"},
		{name: "spaces", input: "a b c", want: "a_b_c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileSafe(tt.input))
		})
	}
}

func TestTruncateString(t *testing.T) {
	assert.Equal(t, "short", TruncateString("short", 10))
	assert.Equal(t, "lengthy...", TruncateString("lengthy string input", 10))
	assert.Equal(t, "ab", TruncateString("abcdef", 2))
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "500ms", FormatDuration(500*time.Millisecond))
	assert.Equal(t, "10.00s", FormatDuration(10*time.Second))
	assert.Equal(t, "2m30s", FormatDuration(150*time.Second))
	assert.Equal(t, "1h30m", FormatDuration(90*time.Minute))
}
