package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EnforcementCollector bundles the Prometheus metrics of the enforcement loop
// and exposes a ready-made /metrics handler for them.
type EnforcementCollector struct {
	gatherer prometheus.Gatherer

	Decisions     *prometheus.CounterVec
	PollDurations prometheus.Histogram

	Towers      prometheus.Gauge
	RogueTowers prometheus.Gauge
	Segments    prometheus.Gauge
}

// NewEnforcementCollector registers the enforcement metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewEnforcementCollector(reg prometheus.Registerer) (*EnforcementCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "rlce_decisions_total",
		Help: "Total number of enforcement decisions, labeled by outcome.",
	}, []string{"decision"})
	decisions, err := registerCounterVec(reg, decisions, "rlce_decisions_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rlce_poll_duration_seconds",
		Help:    "Enforcement poll evaluation latency in seconds.",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05},
	})
	durations, err = registerHistogram(reg, durations, "rlce_poll_duration_seconds")
	if err != nil {
		return nil, err
	}

	towers, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rlce_world_towers",
		Help: "Current number of cell towers in the world.",
	}), "rlce_world_towers")
	if err != nil {
		return nil, err
	}
	rogue, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rlce_world_rogue_towers",
		Help: "Current number of rogue cell towers in the world.",
	}), "rlce_world_rogue_towers")
	if err != nil {
		return nil, err
	}
	segments, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "rlce_route_segments",
		Help: "Current number of route segments.",
	}), "rlce_route_segments")
	if err != nil {
		return nil, err
	}

	return &EnforcementCollector{
		gatherer:      gatherer,
		Decisions:     decisions,
		PollDurations: durations,
		Towers:        towers,
		RogueTowers:   rogue,
		Segments:      segments,
	}, nil
}

// ObserveDecision records one evaluated poll outcome and its latency.
func (c *EnforcementCollector) ObserveDecision(decision string, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.Decisions != nil {
		c.Decisions.WithLabelValues(decision).Inc()
	}
	if c.PollDurations != nil {
		c.PollDurations.Observe(elapsed.Seconds())
	}
}

// SetWorldCounts drives the topology gauges. Call it after any world mutation.
func (c *EnforcementCollector) SetWorldCounts(towers, rogueTowers, segments int) {
	if c == nil {
		return
	}
	if c.Towers != nil {
		c.Towers.Set(float64(towers))
	}
	if c.RogueTowers != nil {
		c.RogueTowers.Set(float64(rogueTowers))
	}
	if c.Segments != nil {
		c.Segments.Set(float64(segments))
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *EnforcementCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return g, nil
}
