package utils

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GenerateRunID generates a unique ID for one measurement run
func GenerateRunID() string {
	return fmt.Sprintf("run_%d_%s", time.Now().Unix(), uuid.NewString()[:8])
}

// GenerateSummaryID generates a unique ID for one source summary record
func GenerateSummaryID() string {
	return uuid.NewString()
}
