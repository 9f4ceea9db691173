package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/milad/simplenem12/internal/domain"
	"github.com/milad/simplenem12/internal/nem12"
)

var (
	parseTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nem12_parse_total",
			Help: "Total number of SimpleNEM12 documents parsed, by outcome and error kind.",
		},
		[]string{"outcome", "kind"},
	)
	parseDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "nem12_parse_duration_seconds",
			Help:    "SimpleNEM12 parse latency in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)
	meterReadsParsedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nem12_meter_reads_parsed_total",
			Help: "Total number of meter reads returned by successful parses.",
		},
	)
)

func observeParse(reads []domain.MeterRead, err error, dur time.Duration) {
	parseDurationSeconds.Observe(dur.Seconds())
	if err == nil {
		parseTotal.WithLabelValues("ok", "").Inc()
		meterReadsParsedTotal.Add(float64(len(reads)))
		return
	}
	kind := "unknown"
	if pe, ok := nem12.AsParseError(err); ok {
		kind = string(pe.Kind)
	}
	parseTotal.WithLabelValues("rejected", kind).Inc()
}
