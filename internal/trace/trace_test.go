package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "DEBUG"} {
		if _, err := ParseLevel(s); err != nil {
			t.Errorf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("ParseLevel accepted an unknown level")
	}
}

func TestLevelFiltersScopes(t *testing.T) {
	cases := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelPhase, ScopeDriver, true},
		{LevelPhase, ScopeFile, false},
		{LevelDetail, ScopeFile, true},
		{LevelDetail, ScopeRecord, false},
		{LevelDebug, ScopeRecord, true},
		{LevelError, ScopeRecord, true},
	}
	for _, tc := range cases {
		if got := tc.level.ShouldEmit(tc.scope); got != tc.want {
			t.Errorf("%v.ShouldEmit(%v) = %v, want %v", tc.level, tc.scope, got, tc.want)
		}
	}
}

func TestStreamTextSpans(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatText)
	run := Begin(tr, ScopeDriver, "parse", 0)
	file := Begin(tr, ScopeFile, "file:entdados.dat", run.ID())
	file.WithExtra("entities", "12").End("")
	Point(tr, ScopeRecord, "record", "filtered out", file.ID())
	run.End("ok")
	if err := tr.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "→ parse") || !strings.Contains(lines[1], "  → file:entdados.dat") {
		t.Fatalf("begin lines = %q, %q", lines[0], lines[1])
	}
	if !strings.Contains(lines[2], "← file:entdados.dat") || !strings.HasSuffix(lines[2], "{entities=12}") {
		t.Fatalf("end line = %q", lines[2])
	}
	if !strings.HasSuffix(lines[3], "(ok)") {
		t.Fatalf("run end = %q", lines[3])
	}
}

func TestNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)
	Begin(tr, ScopeDriver, "validate", 0).End("")
	_ = tr.Flush()

	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var ev map[string]any
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			t.Fatalf("invalid json %q: %v", line, err)
		}
		if ev["name"] != "validate" || ev["scope"] != "driver" {
			t.Fatalf("event = %v", ev)
		}
	}
}

func TestRingKeepsLastEvents(t *testing.T) {
	r := NewRingTracer(3, LevelDebug)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		Point(r, ScopeRecord, name, "", 0)
	}
	snap := r.Snapshot()
	if len(snap) != 3 || snap[0].Name != "c" || snap[2].Name != "e" {
		t.Fatalf("snapshot = %+v", snap)
	}
	var buf bytes.Buffer
	if err := r.Dump(&buf, FormatText); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 3 {
		t.Fatalf("dump = %q", buf.String())
	}
}

func TestNewErrorLevelUsesRing(t *testing.T) {
	tr, err := New(Config{Level: LevelError, Mode: ModeStream})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if RingOf(tr) == nil {
		t.Fatalf("error level must keep events in a ring")
	}
	off, _ := New(Config{Level: LevelOff})
	if off.Enabled() {
		t.Fatalf("off tracer enabled")
	}
}

func TestContextPropagation(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != Nop {
		t.Fatalf("empty context must yield Nop")
	}
	r := NewRingTracer(8, LevelDebug)
	ctx = WithParent(WithTracer(ctx, r), 42)
	if FromContext(ctx) != Tracer(r) || ParentSpan(ctx) != 42 {
		t.Fatalf("context lost tracer or parent")
	}
}

func TestInertSpanOnNop(t *testing.T) {
	sp := Begin(Nop, ScopeDriver, "x", 0)
	if sp.End("") != 0 || sp.ID() != 0 {
		t.Fatalf("nop span is not inert")
	}
}
