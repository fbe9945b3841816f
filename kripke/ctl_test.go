package kripke

import (
	"strings"
	"testing"
)

// traffic is a three-state light: red -> green -> yellow -> red, with a
// broken state reachable from yellow that loops forever.
func traffic() *Graph {
	g := NewGraph()
	for _, c := range []string{"red", "green", "yellow", "broken"} {
		g.AddState(StateID(c), map[string]string{"color": c})
	}
	g.AddEdge("red", "green")
	g.AddEdge("green", "yellow")
	g.AddEdge("yellow", "red")
	g.AddEdge("yellow", "broken")
	g.AddEdge("broken", "broken")
	g.Init = []StateID{"red"}
	return g
}

func where(g *Graph, color string) Formula {
	return Atom{States: Where(g, "color", color)}
}

func TestWhere(t *testing.T) {
	g := traffic()
	got := Where(g, "color", "green")
	if !got.Equals(NewStateSet("green")) {
		t.Errorf("Where(green) = %v", got.Sorted())
	}
}

func TestAddEdgeIsIdempotent(t *testing.T) {
	g := traffic()
	g.AddEdge("red", "green")
	if n := len(g.Succ["red"]); n != 1 {
		t.Errorf("expected 1 successor of red, got %d", n)
	}
	g.AddState("red", map[string]string{"color": "other"})
	if g.Labels["red"]["color"] != "red" {
		t.Error("AddState should keep the first labels")
	}
}

func TestStateName(t *testing.T) {
	got := StateName([]string{"b", "a"}, map[string]string{"a": "1", "b": "2"})
	if got != "b=2,a=1" {
		t.Errorf("StateName = %q", got)
	}
}

func TestPre(t *testing.T) {
	g := traffic()
	if got := Pre_E(NewStateSet("broken"), g); !got.Equals(NewStateSet("yellow", "broken")) {
		t.Errorf("Pre_E(broken) = %v", got.Sorted())
	}
	if got := Pre_A(NewStateSet("red", "broken"), g); !got.Equals(NewStateSet("yellow", "broken")) {
		t.Errorf("Pre_A(red, broken) = %v", got.Sorted())
	}
}

func TestTemporalOperators(t *testing.T) {
	g := traffic()
	red, green, broken := where(g, "red"), where(g, "green"), where(g, "broken")

	tests := []struct {
		name string
		f    Formula
		want bool
	}{
		{"not broken initially", Not{F: broken}, true},
		{"red and not green", And{Left: red, Right: Not{F: green}}, true},
		{"red or broken", Or{Left: red, Right: broken}, true},
		{"EX green", EX{F: green}, true},
		{"AX green", AX{F: green}, true},
		{"EF broken", EF{F: broken}, true},
		{"AF broken", AF{F: broken}, false},
		{"EG not broken", EG{F: Not{F: broken}}, true},
		{"AG not broken", AG{F: Not{F: broken}}, false},
		{"E[not broken U green]", EU{P: Not{F: broken}, Q: green}, true},
		{"AG EF broken", AG{F: EF{F: broken}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Holds(tt.f, g); got != tt.want {
				t.Errorf("Holds = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteMermaid(t *testing.T) {
	g := traffic()
	var sb strings.Builder
	if err := WriteMermaid(g, &sb, WithHighlight(NewStateSet("broken"))); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	for _, want := range []string{"stateDiagram-v2", "[*] --> s0", "s2 --> s3", "s3: broken", "class s3 sat"} {
		if !strings.Contains(out, want) {
			t.Errorf("mermaid output missing %q:\n%s", want, out)
		}
	}

	sb.Reset()
	if err := WriteMermaid(g, &sb, WithoutLabels()); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(sb.String(), "s0: red") {
		t.Error("labels should be omitted")
	}
}

func TestWriteDOT(t *testing.T) {
	g := NewGraph()
	g.AddState("a=1,b=2", map[string]string{"a": "1", "b": "2"})
	g.AddEdge("a=1,b=2", "a=1,b=2")
	g.Init = []StateID{"a=1,b=2"}

	var sb strings.Builder
	if err := WriteDOT(g, &sb, WithTitle("loop")); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	for _, want := range []string{`digraph "loop" {`, "start -> s0;", `label="a=1\nb=2"`, "s0 -> s0;"} {
		if !strings.Contains(out, want) {
			t.Errorf("dot output missing %q:\n%s", want, out)
		}
	}
}
