// Package metric measures block processing of bridges.
//
// Collectors are registered on a caller-owned prometheus registry. Each
// bridge resolves its labelled children once, on the control thread, so
// recording a block on the audio thread is a handful of atomic updates.
package metric

import (
	"fmt"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// Reason explains why a block was not processed by the engine.
type Reason int

// Fallback reasons.
const (
	NoEngine Reason = iota
	NotInitialized
	EngineFailed
	BlockTooLarge
	EngineBusy
	numReasons
)

func (r Reason) String() string {
	switch r {
	case NoEngine:
		return "no_engine"
	case NotInitialized:
		return "not_initialized"
	case EngineFailed:
		return "engine_failed"
	case BlockTooLarge:
		return "block_too_large"
	case EngineBusy:
		return "engine_busy"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

const bridgeLabel = "bridge"

// Metric holds collectors shared by all bridges of a registry.
type Metric struct {
	blocks    *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	overruns  *prometheus.CounterVec
	reinits   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// New creates collectors and registers them.
func New(registry prometheus.Registerer) (*Metric, error) {
	m := &Metric{
		blocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_blocks_total",
				Help: "Total number of processed audio blocks",
			},
			[]string{bridgeLabel},
		),
		fallbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_fallbacks_total",
				Help: "Total number of blocks produced by the fallback policy",
			},
			[]string{bridgeLabel, "reason"},
		),
		overruns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_overruns_total",
				Help: "Total number of blocks that took longer than their duration",
			},
			[]string{bridgeLabel},
		),
		reinits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_engine_initializations_total",
				Help: "Total number of engine initializations",
			},
			[]string{bridgeLabel},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "bridge_block_duration_seconds",
				Help: "Time spent processing one block",
				// 10us to ~80ms
				Buckets: prometheus.ExponentialBuckets(0.00001, 2, 14),
			},
			[]string{bridgeLabel},
		),
	}
	if err := registry.Register(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe implements prometheus.Collector.
func (m *Metric) Describe(ch chan<- *prometheus.Desc) {
	m.blocks.Describe(ch)
	m.fallbacks.Describe(ch)
	m.overruns.Describe(ch)
	m.reinits.Describe(ch)
	m.duration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (m *Metric) Collect(ch chan<- prometheus.Metric) {
	m.blocks.Collect(ch)
	m.fallbacks.Collect(ch)
	m.overruns.Collect(ch)
	m.reinits.Collect(ch)
	m.duration.Collect(ch)
}

// Meter returns measures bound to a single bridge.
func (m *Metric) Meter(bridgeID string) *Meter {
	if m == nil {
		return nil
	}
	meter := &Meter{
		blocks:   m.blocks.WithLabelValues(bridgeID),
		overruns: m.overruns.WithLabelValues(bridgeID),
		reinits:  m.reinits.WithLabelValues(bridgeID),
		duration: m.duration.WithLabelValues(bridgeID),
	}
	for r := Reason(0); r < numReasons; r++ {
		meter.fallbacks[r] = m.fallbacks.WithLabelValues(bridgeID, r.String())
	}
	return meter
}

// Meter records measures of one bridge. A nil Meter records nothing.
type Meter struct {
	blocks    prometheus.Counter
	fallbacks [numReasons]prometheus.Counter
	overruns  prometheus.Counter
	reinits   prometheus.Counter
	duration  prometheus.Observer
}

// Block records a processed block which took elapsed out of budget.
// Zero budget disables overrun detection.
func (m *Meter) Block(elapsed, budget time.Duration) {
	if m == nil {
		return
	}
	m.blocks.Inc()
	m.duration.Observe(elapsed.Seconds())
	if budget > 0 && elapsed > budget {
		m.overruns.Inc()
	}
}

// Fallback records a block produced by the fallback policy.
func (m *Meter) Fallback(r Reason) {
	if m == nil || r < 0 || r >= numReasons {
		return
	}
	m.fallbacks[r].Inc()
}

// Initialized records an engine initialization.
func (m *Meter) Initialized() {
	if m == nil {
		return
	}
	m.reinits.Inc()
}

// BlockDuration returns the duration of numSamples at sampleRate.
func BlockDuration(sampleRate float64, numSamples int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(numSamples) / sampleRate * float64(time.Second))
}

// Summary gathers counters from g and returns them keyed by metric name
// and labels, e.g. `bridge_fallbacks_total{bridge="x",reason="no_engine"}`.
// Histograms report their sample count.
func Summary(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}
	summary := make(map[string]float64)
	for _, f := range families {
		for _, m := range f.GetMetric() {
			key := f.GetName() + labels(m.GetLabel())
			switch f.GetType() {
			case dto.MetricType_COUNTER:
				summary[key] = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				summary[key] = m.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				summary[key] = float64(m.GetHistogram().GetSampleCount())
			}
		}
	}
	return summary, nil
}

func labels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	sorted := make([]*dto.LabelPair, len(pairs))
	copy(sorted, pairs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].GetName() < sorted[j].GetName() })
	s := "{"
	for i, p := range sorted {
		if i > 0 {
			s += ","
		}
		s += fmt.Sprintf("%s=%q", p.GetName(), p.GetValue())
	}
	return s + "}"
}
