package ui

import (
	"strings"
	"testing"

	"hydrodeck/internal/driver"
)

func TestProgressModelTracksFiles(t *testing.T) {
	events := make(chan driver.Event)
	files := []string{"/deck/entdados.dat", "/deck/hidr.dat"}
	m := NewProgressModel("parse /deck", files, events).(*deckModel)

	steps := []driver.Event{
		{Path: files[0], Stage: driver.StageParse},
		{Path: files[0], Stage: driver.StageDone, Status: driver.StatusWarnings, Entities: 12},
		{Path: files[1], Stage: driver.StageDone, Status: driver.StatusCached, Entities: 2},
		{Path: "/elsewhere.dat", Stage: driver.StageDone},
		{Stage: driver.StageValidate},
	}
	for _, ev := range steps {
		m.Update(eventMsg(ev))
	}

	if m.rows[0].label != "warnings" || m.rows[0].entities != 12 {
		t.Fatalf("first item = %+v", m.rows[0])
	}
	if m.rows[1].label != "cached" {
		t.Fatalf("second item = %+v", m.rows[1])
	}
	if got := m.fraction(); got != 1 {
		t.Fatalf("fraction = %v, want 1", got)
	}
	view := m.View()
	for _, want := range []string{"parse /deck (validating)", "entdados.dat", "12 entities", "cached"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}

	if _, cmd := m.Update(doneMsg{}); cmd == nil || !m.done {
		t.Fatalf("done message did not quit")
	}
	if !strings.Contains(m.View(), "done: parse /deck") {
		t.Fatalf("final view = %q", m.View())
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"entdados.dat", 20, "entdados.dat"},
		{"entdados.dat", 8, "entda..."},
		{"entdados.dat", 3, "ent"},
		{"entdados.dat", 0, "entdados.dat"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}

func TestEmptyModelRendersNothing(t *testing.T) {
	m := NewProgressModel("parse", nil, nil)
	if m.View() != "" {
		t.Fatalf("empty model rendered %q", m.View())
	}
}
