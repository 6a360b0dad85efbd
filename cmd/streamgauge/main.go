package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"streamgauge/internal/capture"
	"streamgauge/internal/core/domain"
	"streamgauge/internal/core/services"
	"streamgauge/internal/emit"
	"streamgauge/internal/infrastructure/monitoring"
	repositories "streamgauge/internal/infrastructure/repositories"
	"streamgauge/internal/measure"
	"streamgauge/internal/parser"
	"streamgauge/internal/probe"
	"streamgauge/pkg/config"
	"streamgauge/pkg/logger"
	"streamgauge/pkg/tracing"
)

func main() {
	var (
		configFlag   = flag.String("config", "", "path to config file")
		sourcesFlag  = flag.String("sources", "", "path to the source list file (one stream address per line)")
		strategyFlag = flag.String("strategy", "", "measurement strategy override: tcp, udp, simple, filesize or auto")
		outputFlag   = flag.String("output", "", "output directory override")
	)
	flag.Parse()

	if *sourcesFlag == "" {
		fmt.Fprintln(os.Stderr, "usage: streamgauge -sources <file> [-config <file>] [-strategy <name>] [-output <dir>]")
		os.Exit(2)
	}

	// Try multiple config paths
	configPaths := []string{
		"configs/config.yaml",
		"./configs/config.yaml",
		"config.yaml",
	}
	if *configFlag != "" {
		configPaths = []string{*configFlag}
	}

	var cfg *config.Config
	var err error

	for _, path := range configPaths {
		cfg, err = config.Load(path)
		if err == nil {
			break
		}
	}

	if err != nil {
		// Fallback to defaults if config cannot be loaded
		cfg = config.DefaultConfig()
	}

	if *strategyFlag != "" {
		cfg.Measurement.Strategy = *strategyFlag
	}
	if *outputFlag != "" {
		cfg.Output.Directory = *outputFlag
	}

	// Initialize logger
	zapLogger := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLogger.Sync()

	log := zapLogger.Sugar()

	strategy, err := domain.ParseStrategy(cfg.Measurement.Strategy)
	if err != nil {
		log.Fatalw("invalid strategy", "strategy", cfg.Measurement.Strategy, "error", err)
	}

	// Initialize tracing
	tp, err := tracing.Init(tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		ServiceName: "streamgauge",
		JaegerURL:   cfg.Tracing.JaegerURL,
		Environment: cfg.Tracing.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		log.Fatalw("failed to initialize tracing", "error", err)
	}
	defer tp.Shutdown(context.Background())

	// Initialize repository factory
	repoFactory, err := repositories.NewRepositoryFactory(cfg, log)
	if err != nil {
		log.Fatalw("failed to create repository factory", "error", err)
	}
	defer repoFactory.Close()

	summaryRepo := repoFactory.CreateSummaryRepository()

	// Initialize monitoring
	collector := monitoring.NewPrometheusCollector()

	// Wire the measurement pipeline
	runner := capture.NewExecRunner()
	capturer := capture.NewCapturer(runner, capture.Config{
		SegmentDuration:   cfg.Measurement.SegmentDuration,
		CaptureTimeout:    cfg.Measurement.CaptureTimeout,
		ConnectionTimeout: cfg.Measurement.ConnectionTimeout,
		FFmpegPath:        cfg.Tools.FFmpegPath,
		FFprobePath:       cfg.Tools.FFprobePath,
	}, log)

	selector := measure.NewSelector(capturer, cfg.Measurement.AllowUDPFallback, collector, log)
	diagnostician := probe.NewDiagnostician(runner, cfg.Tools.FFprobePath, log)
	sampler := measure.NewSampler(selector, diagnostician, measure.SamplerConfig{
		Samples:         cfg.Measurement.Samples,
		DiscardFraction: cfg.Measurement.DiscardFraction,
		RetryAttempts:   cfg.Measurement.RetryAttempts,
		RetryBackoff:    cfg.Measurement.RetryBackoff,
		SamplePause:     cfg.Measurement.SamplePause,
		SegmentDuration: cfg.Measurement.SegmentDuration,
		MetadataTimeout: cfg.Measurement.ConnectionTimeout,
	}, log)

	analyzer := services.NewAnalyzerService(
		probe.NewProber(log),
		diagnostician,
		sampler,
		capturer,
		summaryRepo,
		collector,
		services.AnalyzerConfig{
			Strategy:          strategy,
			ConnectionTimeout: cfg.Measurement.ConnectionTimeout,
			SegmentDuration:   cfg.Measurement.SegmentDuration,
			SamplePause:       cfg.Measurement.SamplePause,
		},
		log,
	)

	// Cancel the run on SIGINT/SIGTERM; in-flight captures are killed.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sources, err := parser.LoadFromFile(*sourcesFlag, log)
	if err != nil {
		log.Fatalw("failed to load source list", "path", *sourcesFlag, "error", err)
	}
	if len(sources) == 0 {
		log.Fatalw("source list contains no usable addresses", "path", *sourcesFlag)
	}

	summaries, err := analyzer.Run(ctx, sources)
	if err != nil {
		log.Fatalw("measurement run aborted", "error", err)
	}

	if err := emit.WriteSummaryFile(cfg.Output.Directory, cfg.Output.SummaryFile, summaries); err != nil {
		log.Errorw("failed to write summary file", "error", err)
	} else {
		log.Infow("summary written",
			"path", cfg.Output.Directory+"/"+cfg.Output.SummaryFile)
	}

	if cfg.Output.SeriesEnabled {
		for _, s := range summaries {
			path, err := emit.WriteSeriesFile(cfg.Output.Directory, s)
			if err != nil {
				log.Errorw("failed to write series file", "source", s.Address, "error", err)
				continue
			}
			if path != "" {
				log.Debugw("series written", "source", s.Address, "path", path)
			}
		}
	}

	printRunTable(log, summaries)
}

// printRunTable logs the per-source outcome in a compact form at the end
// of the run.
func printRunTable(log *zap.SugaredLogger, summaries []*domain.SourceSummary) {
	for _, s := range summaries {
		if !s.HasData {
			log.Infow("result", "source", s.Address, "status", "no_data")
			continue
		}
		log.Infow("result",
			"source", s.Address,
			"mean_kbps", fmt.Sprintf("%.2f", s.MeanBps/1000),
			"stddev_kbps", fmt.Sprintf("%.2f", s.StddevBps/1000),
			"min_kbps", fmt.Sprintf("%.2f", float64(s.MinBps)/1000),
			"max_kbps", fmt.Sprintf("%.2f", float64(s.MaxBps)/1000),
			"samples", s.SampleCount,
		)
	}
}
