// Package report renders markdown documentation for a model: its
// description, reachable state diagram, the results of its formulas under
// every variant and the work counters.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/bolt/v3"

	"github.com/rfielding/kripke-atlk/atlk"
	"github.com/rfielding/kripke-atlk/checker"
	"github.com/rfielding/kripke-atlk/kripke"
	"github.com/rfielding/kripke-atlk/mas"
	"github.com/rfielding/kripke-atlk/symbolic"
	"github.com/rfielding/kripke-atlk/telemetry"
)

// Options configures a report.
type Options struct {
	BDD symbolic.Options
	// Variants to compare. Empty means all.
	Variants []checker.Variant
	// DiagramLimit skips the diagram above this many reachable states.
	// Zero or less always draws it.
	DiagramLimit int
	Logger       *bolt.Logger
}

// DefaultOptions compares every variant and draws graphs up to 64 states.
func DefaultOptions() Options {
	return Options{
		BDD:          symbolic.DefaultOptions(),
		Variants:     checker.Variants,
		DiagramLimit: 64,
	}
}

// Row is the outcome of one formula under one variant.
type Row struct {
	Spec     mas.Spec
	Variant  checker.Variant
	Holds    bool
	Stats    checker.Stats
	Duration time.Duration
}

// Mismatch reports whether the row contradicts the expected result.
func (r Row) Mismatch() bool {
	return r.Spec.Expect != nil && *r.Spec.Expect != r.Holds
}

// Report is the evaluated content of a model page.
type Report struct {
	Name       string
	Text       string
	Definition mas.Definition
	Semantics  checker.Semantics
	States     int64
	Diagram    string
	Rows       []Row
	Collector  *telemetry.Collector
}

// Mismatches counts the rows contradicting their expectation.
func (r *Report) Mismatches() int {
	n := 0
	for _, row := range r.Rows {
		if row.Mismatch() {
			n++
		}
	}
	return n
}

// Build evaluates every spec of def under every variant.
func Build(name, text string, def mas.Definition, opts Options) (*Report, error) {
	m, err := mas.Build(def, opts.BDD)
	if err != nil {
		return nil, err
	}
	sem, err := checker.ParseSemantics(def.Semantics)
	if err != nil {
		return nil, err
	}
	variants := opts.Variants
	if len(variants) == 0 {
		variants = checker.Variants
	}

	r := &Report{
		Name:       name,
		Text:       text,
		Definition: def,
		Semantics:  sem,
		States:     m.CountStates(m.ReachableStates()),
		Collector:  telemetry.NewCollector(),
	}

	if opts.DiagramLimit <= 0 || r.States <= int64(opts.DiagramLimit) {
		g, err := m.Explicit(0)
		if err != nil {
			return nil, err
		}
		var sb strings.Builder
		if err := kripke.WriteMermaid(g, &sb); err != nil {
			return nil, err
		}
		r.Diagram = sb.String()
	}

	for _, spec := range def.Specs {
		f, err := atlk.Parse(spec.Formula)
		if err != nil {
			return nil, err
		}
		for _, v := range variants {
			row := Row{Spec: spec, Variant: v}
			c := checker.New(m,
				checker.WithVariant(v),
				checker.WithSemantics(sem),
				checker.WithStats(&row.Stats),
				checker.WithLogger(opts.Logger))
			began := time.Now()
			row.Holds, err = c.Check(f)
			row.Duration = time.Since(began)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", spec.Formula, err)
			}
			r.Collector.AddCheck(telemetry.CheckRecord{
				Model:    name,
				Formula:  spec.Formula,
				Variant:  v,
				Holds:    row.Holds,
				Stats:    row.Stats,
				Duration: row.Duration,
			})
			r.Rows = append(r.Rows, row)
		}
	}
	return r, nil
}
