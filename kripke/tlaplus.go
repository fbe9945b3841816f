package kripke

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// tlaValue renders a label value as a TLA+ constant. Booleans and naturals
// stay bare, everything else becomes a string.
func tlaValue(v string) string {
	switch v {
	case "TRUE", "FALSE":
		return v
	}
	if _, err := strconv.ParseUint(v, 10, 64); err == nil {
		return v
	}
	return strconv.Quote(v)
}

func tlaState(keys []string, labels map[string]string, primed bool) string {
	suffix := ""
	if primed {
		suffix = "'"
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s%s = %s", k, suffix, tlaValue(labels[k]))
	}
	return strings.Join(parts, " /\\ ")
}

// WriteTLA writes g as a TLA+ module whose Init and Next enumerate the
// initial states and the transitions of the graph. It is meant for
// cross-checking invariants with TLC, not for reading.
func WriteTLA(g *Graph, w io.Writer, module string) error {
	keySet := make(map[string]struct{})
	for _, labels := range g.Labels {
		for k := range labels {
			keySet[k] = struct{}{}
		}
	}
	keys := slices.Sorted(maps.Keys(keySet))

	var sb strings.Builder
	fmt.Fprintf(&sb, "---- MODULE %s ----\n", module)
	if len(keys) == 0 {
		sb.WriteString("====\n")
		_, err := io.WriteString(w, sb.String())
		return err
	}
	fmt.Fprintf(&sb, "VARIABLES %s\n\n", strings.Join(keys, ", "))
	fmt.Fprintf(&sb, "vars == <<%s>>\n\n", strings.Join(keys, ", "))

	sb.WriteString("Init ==\n")
	if len(g.Init) == 0 {
		sb.WriteString("    FALSE\n")
	}
	for _, s := range g.Init {
		fmt.Fprintf(&sb, "    \\/ (%s)\n", tlaState(keys, g.Labels[s], false))
	}

	sb.WriteString("\nNext ==\n")
	edges := 0
	for _, from := range g.States {
		for _, to := range g.Succ[from] {
			fmt.Fprintf(&sb, "    \\/ (%s /\\ %s)\n",
				tlaState(keys, g.Labels[from], false), tlaState(keys, g.Labels[to], true))
			edges++
		}
	}
	if edges == 0 {
		sb.WriteString("    FALSE\n")
	}
	sb.WriteString("\nSpec == Init /\\ [][Next]_vars\n")
	sb.WriteString("====\n")
	_, err := io.WriteString(w, sb.String())
	return err
}
