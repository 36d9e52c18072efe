package view

import (
	"strings"
	"testing"

	"toruslife/src/universe"
)

func testArea() universe.Area {
	a := universe.Area{Width: 4, Height: 3, Entities: make([][]universe.Cell, 3)}
	for y := range a.Entities {
		a.Entities[y] = make([]universe.Cell, 4)
	}
	a.Entities[0][1] = true
	a.Entities[2][3] = true
	return a
}

func TestField_ResetAndToggle(t *testing.T) {
	var f field
	f.reset(testArea())
	if !f.isLit(0, 1) || !f.isLit(2, 3) || f.isLit(1, 1) {
		t.Fatalf("unexpected field after reset: %v", f.lit)
	}

	f.toggle([]universe.Coord{{Row: 0, Col: 1}, {Row: 1, Col: 1}, {Row: 7, Col: 0}, {Row: -1, Col: 2}})
	if f.isLit(0, 1) {
		t.Fatalf("cell (0,1) should be switched off")
	}
	if !f.isLit(1, 1) {
		t.Fatalf("cell (1,1) should be switched on")
	}
	if !f.isLit(2, 3) {
		t.Fatalf("cell (2,3) was not reported and should stay on")
	}
}

func TestField_Render(t *testing.T) {
	var f field
	f.reset(testArea())

	got := f.render(10, 10, "#", ".")
	want := ".#..\n....\n...#"
	if got != want {
		t.Fatalf("render =\n%s\nexpected\n%s", got, want)
	}

	cropped := f.render(2, 2, "#", ".")
	lines := strings.Split(cropped, "\n")
	if len(lines) != 2 {
		t.Fatalf("cropped render has %d lines, expected 2", len(lines))
	}
	if lines[0] != ".#" {
		t.Fatalf("first cropped line %q, expected %q", lines[0], ".#")
	}
	if !strings.Contains(lines[1], "larger than the viewing area") {
		t.Fatalf("expected the crop warning, got %q", lines[1])
	}
}
