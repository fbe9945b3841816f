package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/rfielding/kripke-atlk/config"
)

// ErrUnknownExporter is returned for exporters other than stdout and noop.
var ErrUnknownExporter = errors.New("unknown trace exporter")

// Provider owns the tracer used for check spans and the meter provider
// behind Metrics. Metrics are always collected in process; with the stdout
// exporter they are also written out on Shutdown.
type Provider struct {
	tracer        trace.Tracer
	reader        *sdkmetric.ManualReader
	metrics       *Metrics
	shutdownFuncs []func(context.Context) error
}

// ProviderOption configures a Provider.
type ProviderOption func(*providerOptions)

type providerOptions struct {
	serviceName    string
	serviceVersion string
	output         io.Writer
}

// WithService sets the service name and version on exported telemetry.
func WithService(name, version string) ProviderOption {
	return func(o *providerOptions) {
		o.serviceName = name
		o.serviceVersion = version
	}
}

// WithOutput sets where the stdout exporters write.
func WithOutput(w io.Writer) ProviderOption {
	return func(o *providerOptions) { o.output = w }
}

// NewProvider sets up tracing and metrics from cfg. A disabled config or
// the noop exporter yields a no-op tracer and leaves the global providers
// alone.
func NewProvider(cfg config.TracingConfig, opts ...ProviderOption) (*Provider, error) {
	o := providerOptions{serviceName: "atlk", serviceVersion: "dev", output: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	export := cfg.Enabled
	if export {
		switch cfg.Exporter {
		case "", "noop":
			export = false
		case "stdout":
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownExporter, cfg.Exporter)
		}
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(o.serviceName),
		semconv.ServiceVersion(o.serviceVersion),
	)
	p := &Provider{reader: sdkmetric.NewManualReader()}
	mopts := []sdkmetric.Option{sdkmetric.WithResource(res), sdkmetric.WithReader(p.reader)}

	if !export {
		p.tracer = noop.NewTracerProvider().Tracer(MeterName)
	} else {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(o.output), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, err
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exp),
			sdktrace.WithResource(res),
		)
		otel.SetTracerProvider(tp)
		p.tracer = tp.Tracer(MeterName)
		p.shutdownFuncs = append(p.shutdownFuncs, tp.Shutdown)

		mexp, err := stdoutmetric.New(stdoutmetric.WithWriter(o.output), stdoutmetric.WithPrettyPrint())
		if err != nil {
			return nil, err
		}
		mopts = append(mopts, sdkmetric.WithReader(sdkmetric.NewPeriodicReader(mexp)))
	}

	mp := sdkmetric.NewMeterProvider(mopts...)
	if export {
		otel.SetMeterProvider(mp)
	}
	p.shutdownFuncs = append(p.shutdownFuncs, mp.Shutdown)

	metrics, err := NewMetrics(mp)
	if err != nil {
		return nil, err
	}
	p.metrics = metrics
	return p, nil
}

// Tracer returns the tracer for check spans.
func (p *Provider) Tracer() trace.Tracer {
	return p.tracer
}

// Metrics returns the instruments bound to this provider.
func (p *Provider) Metrics() *Metrics {
	return p.metrics
}

// Total is the sum of one counter over all its attribute sets.
type Total struct {
	Name  string
	Value int64
}

// Totals collects the counters recorded so far, sorted by name.
func (p *Provider) Totals(ctx context.Context) ([]Total, error) {
	var rm metricdata.ResourceMetrics
	if err := p.reader.Collect(ctx, &rm); err != nil {
		return nil, err
	}
	var out []Total
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			t := Total{Name: m.Name}
			for _, dp := range sum.DataPoints {
				t.Value += dp.Value
			}
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Shutdown flushes and stops exporters.
func (p *Provider) Shutdown(ctx context.Context) error {
	var errs []error
	for _, fn := range p.shutdownFuncs {
		if err := fn(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
