// Package telemetry records checker work as OpenTelemetry metrics and
// traces, and renders collected counters as markdown.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/rfielding/kripke-atlk/checker"
)

// MeterName is the instrumentation scope of every instrument.
const MeterName = "github.com/rfielding/kripke-atlk"

// Metrics holds the instruments fed by model checking runs.
type Metrics struct {
	checks       metric.Int64Counter
	strategies   metric.Int64Counter
	filterings   metric.Int64Counter
	splits       metric.Int64Counter
	fixpoint     metric.Int64Counter
	nfair        metric.Int64Counter
	checkLatency metric.Float64Histogram
}

// CheckRecord describes one formula check.
type CheckRecord struct {
	Model    string
	Formula  string
	Variant  checker.Variant
	Holds    bool
	Stats    checker.Stats
	Duration time.Duration
}

// NewMetrics creates the instruments on mp, or on the global provider
// when mp is nil.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(MeterName)

	m := &Metrics{}
	var err error
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
		unit string
	}{
		{&m.checks, "atlk.checks", "Formulas checked", "{check}"},
		{&m.strategies, "atlk.strategies", "Uniform strategies evaluated", "{strategy}"},
		{&m.filterings, "atlk.filterings", "Winning-region computations", "{filtering}"},
		{&m.splits, "atlk.splits", "Split steps over equivalence classes", "{split}"},
		{&m.fixpoint, "atlk.fixpoint.iterations", "Strategic fixpoint iterations", "{iteration}"},
		{&m.nfair, "atlk.nfair.iterations", "Unfair-avoidance fixpoint iterations", "{iteration}"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, err
		}
	}
	m.checkLatency, err = meter.Float64Histogram("atlk.check.duration",
		metric.WithDescription("Time spent checking one formula"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Record adds one check to the instruments.
func (m *Metrics) Record(ctx context.Context, r CheckRecord) {
	attrs := metric.WithAttributes(
		attribute.String("model", r.Model),
		attribute.String("variant", string(r.Variant)),
	)
	m.checks.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", r.Model),
		attribute.String("variant", string(r.Variant)),
		attribute.Bool("holds", r.Holds),
	))
	m.strategies.Add(ctx, r.Stats.Strategies, attrs)
	m.filterings.Add(ctx, r.Stats.Filterings, attrs)
	m.splits.Add(ctx, r.Stats.Splits, attrs)
	m.fixpoint.Add(ctx, r.Stats.FixpointIterations, attrs)
	m.nfair.Add(ctx, r.Stats.NfairIterations, attrs)
	m.checkLatency.Record(ctx, float64(r.Duration.Microseconds())/1000, attrs)
}
