package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rfielding/kripke-atlk/atlk"
	"github.com/rfielding/kripke-atlk/checker"
	"github.com/rfielding/kripke-atlk/logging"
	"github.com/rfielding/kripke-atlk/mas"
	"github.com/rfielding/kripke-atlk/telemetry"
)

// ErrExpectationFailed is returned when a formula's result differs from
// the expected one.
var ErrExpectationFailed = errors.New("unexpected result")

// result is the outcome of checking one formula with one variant.
type result struct {
	Spec     mas.Spec
	Variant  checker.Variant
	Holds    bool
	Stats    checker.Stats
	Duration time.Duration
}

// Failed reports whether the result contradicts the expectation.
func (r result) Failed() bool {
	return r.Spec.Expect != nil && *r.Spec.Expect != r.Holds
}

// runner checks formulas on one model and reports to logs, metrics and
// traces.
type runner struct {
	model     *mas.MAS
	semantics checker.Semantics
	logger    *bolt.Logger
	tracer    trace.Tracer
	metrics   *telemetry.Metrics
	runID     string
}

func (a *App) newRunner(m *mas.MAS, sem checker.Semantics, provider *telemetry.Provider) *runner {
	return &runner{
		model:     m,
		semantics: sem,
		logger:    a.logger,
		tracer:    provider.Tracer(),
		metrics:   provider.Metrics(),
		runID:     uuid.NewString(),
	}
}

func (r *runner) check(ctx context.Context, spec mas.Spec, variant checker.Variant) (result, error) {
	res := result{Spec: spec, Variant: variant}
	ctx, span := r.tracer.Start(ctx, "atlk.check", trace.WithAttributes(
		attribute.String("atlk.model", r.model.Name()),
		attribute.String("atlk.formula", spec.Formula),
		attribute.String("atlk.variant", string(variant)),
		attribute.String("atlk.semantics", string(r.semantics)),
		attribute.String("atlk.run_id", r.runID),
	))
	defer span.End()

	f, err := atlk.Parse(spec.Formula)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res, err
	}

	began := time.Now()
	c := checker.New(r.model,
		checker.WithVariant(variant),
		checker.WithSemantics(r.semantics),
		checker.WithStats(&res.Stats),
		checker.WithLogger(r.logger))
	res.Holds, err = c.Check(f)
	res.Duration = time.Since(began)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logging.With(r.logger.Error(),
			logging.RunID(r.runID),
			logging.Model(r.model.Name()),
			logging.Formula(spec.Formula),
			logging.ErrorField(err)).Msg("check failed")
		return res, err
	}

	span.SetAttributes(
		attribute.Bool("atlk.holds", res.Holds),
		attribute.Int64("atlk.strategies", res.Stats.Strategies),
	)
	r.metrics.Record(ctx, telemetry.CheckRecord{
		Model:    r.model.Name(),
		Formula:  spec.Formula,
		Variant:  variant,
		Holds:    res.Holds,
		Stats:    res.Stats,
		Duration: res.Duration,
	})
	logging.With(r.logger.Info(),
		logging.RunID(r.runID),
		logging.Model(r.model.Name()),
		logging.Formula(spec.Formula),
		logging.Variant(string(variant)),
		logging.Semantics(string(r.semantics)),
		logging.Result(res.Holds),
		logging.Count("strategies", res.Stats.Strategies),
		logging.Duration(res.Duration)).Msg("formula checked")
	return res, nil
}

// checkAll checks every spec with every variant, stopping at the first
// error.
func (r *runner) checkAll(ctx context.Context, specs []mas.Spec, variants []checker.Variant) ([]result, error) {
	var out []result
	for _, spec := range specs {
		for _, v := range variants {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			res, err := r.check(ctx, spec, v)
			if err != nil {
				return out, fmt.Errorf("%s: %w", spec.Formula, err)
			}
			out = append(out, res)
		}
	}
	return out, nil
}

func printResults(w io.Writer, results []result, showStats bool) int {
	failed := 0
	for _, r := range results {
		mark := "✓"
		if !r.Holds {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s [%s] %s", mark, r.Variant, r.Spec.Formula)
		if r.Failed() {
			failed++
			fmt.Fprintf(w, "  (expected %t)", *r.Spec.Expect)
		}
		fmt.Fprintln(w)
		if showStats {
			fmt.Fprintf(w, "    strategies=%d filterings=%d splits=%d fixpoint=%d nfair=%d time=%s\n",
				r.Stats.Strategies, r.Stats.Filterings, r.Stats.Splits,
				r.Stats.FixpointIterations, r.Stats.NfairIterations, r.Duration.Round(time.Microsecond))
		}
	}
	return failed
}

func printTotals(w io.Writer, totals []telemetry.Total) {
	parts := make([]string, len(totals))
	for i, t := range totals {
		parts[i] = fmt.Sprintf("%s=%d", t.Name, t.Value)
	}
	fmt.Fprintf(w, "Totals: %s\n", strings.Join(parts, " "))
}
