package telemetry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rfielding/kripke-atlk/checker"
)

// Metric is one named counter kept in memory for reports.
type Metric struct {
	Name        string
	Type        string
	Value       float64
	Unit        string
	Description string
}

// Inc adds one.
func (m *Metric) Inc() {
	m.Value++
}

// Add adds delta.
func (m *Metric) Add(delta float64) {
	m.Value += delta
}

// Collector accumulates counters for markdown reports.
type Collector struct {
	metrics map[string]*Metric
}

func NewCollector() *Collector {
	return &Collector{metrics: make(map[string]*Metric)}
}

// Counter returns the counter called name, creating it on first use.
func (c *Collector) Counter(name, desc, unit string) *Metric {
	if m, ok := c.metrics[name]; ok {
		return m
	}
	m := &Metric{Name: name, Type: "counter", Unit: unit, Description: desc}
	c.metrics[name] = m
	return m
}

// Value returns the current value of name, zero when unknown.
func (c *Collector) Value(name string) float64 {
	if m, ok := c.metrics[name]; ok {
		return m.Value
	}
	return 0
}

// AddCheck accumulates one check's counters.
func (c *Collector) AddCheck(r CheckRecord) {
	c.Counter("checks", "Formulas checked", "checks").Inc()
	if r.Holds {
		c.Counter("checks.holding", "Formulas holding in every initial state", "checks").Inc()
	}
	c.addStats(r.Stats)
	c.Counter("check.time", "Total checking time", "ms").Add(float64(r.Duration.Microseconds()) / 1000)
}

func (c *Collector) addStats(s checker.Stats) {
	c.Counter("strategies", "Uniform strategies evaluated", "strategies").Add(float64(s.Strategies))
	c.Counter("filterings", "Winning-region computations", "filterings").Add(float64(s.Filterings))
	c.Counter("splits", "Split steps over equivalence classes", "splits").Add(float64(s.Splits))
	c.Counter("fixpoint.iterations", "Strategic fixpoint iterations", "iterations").Add(float64(s.FixpointIterations))
	c.Counter("nfair.iterations", "Unfair-avoidance fixpoint iterations", "iterations").Add(float64(s.NfairIterations))
}

func (c *Collector) names() []string {
	names := make([]string, 0, len(c.metrics))
	for name := range c.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Table renders the counters as a markdown table sorted by name.
func (c *Collector) Table() string {
	var sb strings.Builder
	sb.WriteString("| Metric | Type | Value | Unit | Description |\n")
	sb.WriteString("|--------|------|-------|------|-------------|\n")
	for _, name := range c.names() {
		m := c.metrics[name]
		fmt.Fprintf(&sb, "| %s | %s | %.2f | %s | %s |\n", m.Name, m.Type, m.Value, m.Unit, m.Description)
	}
	return sb.String()
}

// Chart renders the named counters as a Mermaid bar chart.
func (c *Collector) Chart(title string, names []string) string {
	var sb strings.Builder
	sb.WriteString("xychart-beta\n")
	fmt.Fprintf(&sb, "    title %q\n", title)

	labels := make([]string, len(names))
	values := make([]string, len(names))
	for i, name := range names {
		labels[i] = fmt.Sprintf("%q", name)
		values[i] = fmt.Sprintf("%.0f", c.Value(name))
	}
	fmt.Fprintf(&sb, "    x-axis [%s]\n", strings.Join(labels, ", "))
	fmt.Fprintf(&sb, "    bar [%s]\n", strings.Join(values, ", "))
	return sb.String()
}
