package monitoring

import (
	"time"

	"streamgauge/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	// Counters
	sourcesMeasuredTotal prometheus.Counter
	sourcesNoDataTotal   prometheus.Counter
	samplesTotal         *prometheus.CounterVec
	capturesTotal        *prometheus.CounterVec

	// Histograms
	captureDuration prometheus.Histogram

	// Per-source metrics
	sourceBitrate *prometheus.GaugeVec
	sourceStddev  *prometheus.GaugeVec
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		sourcesMeasuredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "streamgauge_sources_measured_total",
			Help: "Total number of sources that produced a populated summary",
		}),

		sourcesNoDataTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "streamgauge_sources_no_data_total",
			Help: "Total number of sources that produced no data",
		}),

		samplesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "streamgauge_samples_total",
			Help: "Total number of samples taken, by outcome",
		}, []string{"outcome"}),

		capturesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "streamgauge_captures_total",
			Help: "Total number of capture invocations, by strategy and outcome",
		}, []string{"strategy", "outcome"}),

		captureDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "streamgauge_capture_duration_seconds",
			Help:    "Duration of individual capture invocations",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),

		sourceBitrate: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "streamgauge_source_bitrate_bps",
			Help: "Measured mean bitrate of sources in bits per second",
		}, []string{"source"}),

		sourceStddev: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "streamgauge_source_bitrate_stddev_bps",
			Help: "Standard deviation of measured source bitrate in bits per second",
		}, []string{"source"}),
	}
}

func (p *PrometheusCollector) RecordCapture(strategy domain.Strategy, ok bool, duration time.Duration) {
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	p.capturesTotal.WithLabelValues(string(strategy), outcome).Inc()
	p.captureDuration.Observe(duration.Seconds())
}

func (p *PrometheusCollector) RecordSample(ok bool) {
	outcome := "skipped"
	if ok {
		outcome = "success"
	}
	p.samplesTotal.WithLabelValues(outcome).Inc()
}

func (p *PrometheusCollector) RecordSummary(summary *domain.SourceSummary) {
	if !summary.HasData {
		p.sourcesNoDataTotal.Inc()
		return
	}
	p.sourcesMeasuredTotal.Inc()
	p.sourceBitrate.WithLabelValues(summary.Address).Set(summary.MeanBps)
	p.sourceStddev.WithLabelValues(summary.Address).Set(summary.StddevBps)
}
