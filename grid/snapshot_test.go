package grid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/TKDKid1000/tablecalc/formula"
)

func TestSnapshotRoundTrip(t *testing.T) {
	registry := formula.NewDefaultRegistry()
	g := New(registry)
	g.Set(formula.Cell(0, 0), "1")
	g.Set(formula.Cell(0, 1), "=A1+1")

	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	if err := SaveSnapshot(path, g); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(raw) == 0 {
		t.Fatal("expected a non-empty snapshot file")
	}

	reloaded, err := LoadSnapshot(path, registry)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.GetCellText(formula.Cell(0, 0)) != "1" {
		t.Errorf("A1 = %q, want 1", reloaded.GetCellText(formula.Cell(0, 0)))
	}
	if reloaded.GetCellText(formula.Cell(0, 1)) != "=A1+1" {
		t.Errorf("B1 = %q, want =A1+1", reloaded.GetCellText(formula.Cell(0, 1)))
	}

	text, err := reloaded.Render(formula.Cell(0, 1))
	if err != nil {
		t.Fatal(err)
	}
	if text != "2" {
		t.Errorf("Render(B1) after reload = %q, want 2", text)
	}
}
