package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Measurement struct {
		// Strategy is one of tcp, udp, simple, filesize, auto.
		Strategy string `yaml:"strategy"`
		// Samples is the number of observations taken per source.
		Samples int `yaml:"samples"`
		// SegmentDuration is the observation window of one sample.
		SegmentDuration time.Duration `yaml:"segment_duration"`
		// DiscardFraction of the earliest samples is excluded from the
		// statistics to avoid startup-transient bias.
		DiscardFraction   float64       `yaml:"discard_fraction"`
		RetryAttempts     int           `yaml:"retry_attempts"`
		CaptureTimeout    time.Duration `yaml:"capture_timeout"`
		ConnectionTimeout time.Duration `yaml:"connection_timeout"`
		AllowUDPFallback  bool          `yaml:"allow_udp_fallback"`
		RetryBackoff      time.Duration `yaml:"retry_backoff"`
		SamplePause       time.Duration `yaml:"sample_pause"`
	} `yaml:"measurement"`

	Tools struct {
		FFmpegPath  string `yaml:"ffmpeg_path"`
		FFprobePath string `yaml:"ffprobe_path"`
	} `yaml:"tools"`

	Output struct {
		Directory     string `yaml:"directory"`
		SummaryFile   string `yaml:"summary_file"`
		SeriesEnabled bool   `yaml:"series_enabled"`
	} `yaml:"output"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`

	Server struct {
		Enabled      bool          `yaml:"enabled"`
		Address      string        `yaml:"address"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"server"`

	RateLimiting struct {
		Enabled           bool    `yaml:"enabled"`
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rate_limiting"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size"`
	} `yaml:"redis"`

	Tracing struct {
		Enabled     bool    `yaml:"enabled"`
		JaegerURL   string  `yaml:"jaeger_url"`
		Environment string  `yaml:"environment"`
		SampleRate  float64 `yaml:"sample_rate"`
	} `yaml:"tracing"`
}

// Validate checks that configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	m := &c.Measurement

	if _, err := parseStrategyName(m.Strategy); err != nil {
		return fmt.Errorf("measurement.strategy: %w", err)
	}
	if m.Samples < 1 {
		return fmt.Errorf("measurement.samples must be >= 1")
	}
	if m.SegmentDuration <= 0 {
		return fmt.Errorf("measurement.segment_duration must be > 0")
	}
	if m.DiscardFraction < 0 || m.DiscardFraction >= 1 {
		return fmt.Errorf("measurement.discard_fraction must be in [0, 1)")
	}
	if m.RetryAttempts < 1 {
		return fmt.Errorf("measurement.retry_attempts must be >= 1")
	}
	if m.CaptureTimeout <= m.SegmentDuration {
		return fmt.Errorf("measurement.capture_timeout must be > segment_duration")
	}
	if m.ConnectionTimeout <= 0 {
		return fmt.Errorf("measurement.connection_timeout must be > 0")
	}
	if m.RetryBackoff < 0 {
		return fmt.Errorf("measurement.retry_backoff must be >= 0")
	}
	if m.SamplePause < 0 {
		return fmt.Errorf("measurement.sample_pause must be >= 0")
	}

	if c.Output.Directory == "" {
		return fmt.Errorf("output.directory must not be empty")
	}
	if c.Output.SummaryFile == "" {
		return fmt.Errorf("output.summary_file must not be empty")
	}

	if c.Logging.Level == "" {
		return fmt.Errorf("logging.level must not be empty")
	}

	if c.Server.Enabled {
		if c.Server.Address == "" {
			return fmt.Errorf("server.address must not be empty when server.enabled=true")
		}
		if c.Server.ReadTimeout <= 0 {
			return fmt.Errorf("server.read_timeout must be > 0 when server.enabled=true")
		}
		if c.Server.WriteTimeout <= 0 {
			return fmt.Errorf("server.write_timeout must be > 0 when server.enabled=true")
		}
	}

	if c.RateLimiting.Enabled {
		if c.RateLimiting.RequestsPerSecond <= 0 {
			return fmt.Errorf("rate_limiting.requests_per_second must be > 0 when rate limiting is enabled")
		}
		if c.RateLimiting.Burst <= 0 {
			return fmt.Errorf("rate_limiting.burst must be > 0 when rate limiting is enabled")
		}
	}

	if c.Redis.Enabled {
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address must not be empty when redis.enabled=true")
		}
		if c.Redis.PoolSize <= 0 {
			return fmt.Errorf("redis.pool_size must be > 0 when redis.enabled=true")
		}
	}

	if c.Tracing.Enabled {
		if c.Tracing.JaegerURL == "" {
			return fmt.Errorf("tracing.jaeger_url must not be empty when tracing.enabled=true")
		}
		if c.Tracing.SampleRate <= 0 || c.Tracing.SampleRate > 1 {
			return fmt.Errorf("tracing.sample_rate must be in (0, 1] when tracing.enabled=true")
		}
	}

	return nil
}

// parseStrategyName mirrors domain.ParseStrategy without importing it; the
// config package stays free of internal imports.
func parseStrategyName(s string) (string, error) {
	switch s {
	case "", "auto", "tcp", "udp", "simple", "filesize":
		return s, nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// Load reads configuration from YAML file, applies defaults and env overrides.
func Load(configPath string) (*Config, error) {
	// If file does not exist, fall back to defaults
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config yaml: %w", err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// DefaultConfig returns configuration with sane defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Measurement.Strategy = "auto"
	cfg.Measurement.Samples = 5
	cfg.Measurement.SegmentDuration = 10 * time.Second
	cfg.Measurement.DiscardFraction = 0.2
	cfg.Measurement.RetryAttempts = 3
	cfg.Measurement.CaptureTimeout = 30 * time.Second
	cfg.Measurement.ConnectionTimeout = 10 * time.Second
	cfg.Measurement.AllowUDPFallback = true
	cfg.Measurement.RetryBackoff = 2 * time.Second
	cfg.Measurement.SamplePause = 1 * time.Second

	cfg.Tools.FFmpegPath = "ffmpeg"
	cfg.Tools.FFprobePath = "ffprobe"

	cfg.Output.Directory = "output"
	cfg.Output.SummaryFile = "bitrate_data.csv"
	cfg.Output.SeriesEnabled = true

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"

	cfg.Server.Enabled = false
	cfg.Server.Address = ":8080"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second

	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 50
	cfg.RateLimiting.Burst = 100

	cfg.Redis.Enabled = false
	cfg.Redis.Address = "localhost:6379"
	cfg.Redis.DB = 0
	cfg.Redis.PoolSize = 10

	cfg.Tracing.Enabled = false
	cfg.Tracing.JaegerURL = "http://localhost:14268/api/traces"
	cfg.Tracing.Environment = "development"
	cfg.Tracing.SampleRate = 1.0

	return cfg
}

func (c *Config) applyEnvOverrides() {
	// Apply environment variable overrides
	if level := os.Getenv("STREAMGAUGE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if addr := os.Getenv("STREAMGAUGE_SERVER_ADDRESS"); addr != "" {
		c.Server.Address = addr
	}
	if addr := os.Getenv("STREAMGAUGE_REDIS_ADDRESS"); addr != "" {
		c.Redis.Address = addr
	}
	if pw := os.Getenv("STREAMGAUGE_REDIS_PASSWORD"); pw != "" {
		c.Redis.Password = pw
	}
}
