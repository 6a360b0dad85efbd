package domain

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// DefaultRTSPPort is used when the source address carries no explicit port.
const DefaultRTSPPort = 554

// Strategy selects the technique used to derive a bitrate sample.
type Strategy string

const (
	StrategyTCP      Strategy = "tcp"
	StrategyUDP      Strategy = "udp"
	StrategySimple   Strategy = "simple"
	StrategyFileSize Strategy = "filesize"
	// StrategyAuto is resolved by the fallback controller and is never
	// executed directly.
	StrategyAuto Strategy = "auto"
)

// ParseStrategy maps a user-supplied strategy name to a Strategy tag.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyTCP:
		return StrategyTCP, nil
	case StrategyUDP:
		return StrategyUDP, nil
	case StrategySimple:
		return StrategySimple, nil
	case StrategyFileSize:
		return StrategyFileSize, nil
	case StrategyAuto, "":
		return StrategyAuto, nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// Source is one remote stream endpoint.
type Source struct {
	// URL is the full connection string, credentials included.
	URL string
	// Host and Port are extracted for the connectivity probe.
	Host string
	Port int
}

// ParseSource parses a stream address. The host must be non-empty and the
// port defaults to 554 when omitted.
func ParseSource(raw string) (*Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty source address")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("malformed source address %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("source address %q has no host", raw)
	}

	host := u.Hostname()
	if host == "" {
		return nil, fmt.Errorf("source address %q has no host", raw)
	}
	port := DefaultRTSPPort
	if p := u.Port(); p != "" {
		n, convErr := strconv.Atoi(p)
		if convErr != nil || n <= 0 || n > 65535 {
			return nil, fmt.Errorf("source address %q has invalid port %q", raw, p)
		}
		port = n
	}

	return &Source{URL: raw, Host: host, Port: port}, nil
}

// Addr returns the host:port pair used for transport-level probing.
func (s *Source) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Redacted returns the address with embedded credentials masked, for logs
// and reports.
func (s *Source) Redacted() string {
	u, err := url.Parse(s.URL)
	if err != nil || u.User == nil {
		return s.URL
	}
	u.User = url.User(u.User.Username())
	return u.String()
}
