// Package probe gates measurement: a transport-level connectivity check
// first, then a protocol-level diagnosis of the stream itself.
package probe

import (
	"net"
	"time"

	"go.uber.org/zap"

	"streamgauge/internal/core/domain"
)

// Prober verifies a TCP handshake to the source's host/port before any
// measurement is attempted.
type Prober struct {
	log *zap.SugaredLogger

	// dial is swapped in tests.
	dial func(network, address string, timeout time.Duration) (net.Conn, error)
}

func NewProber(log *zap.SugaredLogger) *Prober {
	return &Prober{log: log, dial: net.DialTimeout}
}

// Probe returns true iff a TCP handshake to the source completes within
// the timeout. Any failure (unresolvable host, refused connection,
// timeout) returns false; this is a hard gate for the source.
func (p *Prober) Probe(src *domain.Source, timeout time.Duration) bool {
	conn, err := p.dial("tcp", src.Addr(), timeout)
	if err != nil {
		p.log.Infow("connectivity probe failed",
			"source", src.Redacted(), "addr", src.Addr(), "error", err)
		return false
	}
	conn.Close()
	return true
}
