package domain

import "errors"

var (
	ErrSourceUnreachable = errors.New("source unreachable")
	ErrStreamUndiagnosed = errors.New("stream diagnosis failed")
	ErrNoMeasurement     = errors.New("no measurement produced")
	ErrSummaryNotFound   = errors.New("summary not found")
	ErrToolUnavailable   = errors.New("required external tool unavailable")
)
