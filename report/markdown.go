package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// cell escapes text for a markdown table cell.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// WriteMarkdown writes the report page.
func (r *Report) WriteMarkdown(w io.Writer) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", r.Name)
	if r.Text != "" {
		sb.WriteString(strings.TrimSpace(r.Text))
		sb.WriteString("\n\n")
	}

	sb.WriteString("## Agents\n\n")
	sb.WriteString("| Agent | Observes | Actions |\n")
	sb.WriteString("|-------|----------|---------|\n")
	for _, a := range r.Definition.Agents {
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", a.Name, strings.Join(a.Observes, ", "), strings.Join(a.Actions, ", "))
	}
	fmt.Fprintf(&sb, "\nStrategies are evaluated under %s semantics. ", r.Semantics)
	fmt.Fprintf(&sb, "The model has %d reachable states", r.States)
	if n := len(r.Definition.Fairness); n > 0 {
		fmt.Fprintf(&sb, " and %d fairness constraints", n)
	}
	sb.WriteString(".\n\n")

	if r.Diagram != "" {
		sb.WriteString("## Reachable states\n\n```mermaid\n")
		sb.WriteString(r.Diagram)
		sb.WriteString("```\n\n")
	}

	sb.WriteString("## Formulas\n\n")
	sb.WriteString("| Formula | Variant | Holds | Expected | Strategies | Filterings | Time |\n")
	sb.WriteString("|---------|---------|-------|----------|------------|------------|------|\n")
	for _, row := range r.Rows {
		expected := "-"
		if row.Spec.Expect != nil {
			expected = fmt.Sprint(*row.Spec.Expect)
			if row.Mismatch() {
				expected += " ⚠"
			}
		}
		fmt.Fprintf(&sb, "| `%s` | %s | %t | %s | %d | %d | %s |\n",
			cell(row.Spec.Formula), row.Variant, row.Holds, expected,
			row.Stats.Strategies, row.Stats.Filterings, row.Duration.Round(time.Microsecond))
	}

	sb.WriteString("\n## Metrics\n\n")
	sb.WriteString(r.Collector.Table())
	sb.WriteString("\n```mermaid\n")
	sb.WriteString(r.Collector.Chart(r.Name, []string{"strategies", "filterings", "splits", "fixpoint.iterations", "nfair.iterations"}))
	sb.WriteString("```\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
