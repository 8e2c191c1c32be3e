package i18nmig

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDiffTexts_NoChanges(t *testing.T) {
	previous := TranslationMap{"Hola": "hola", "Mundo": "mundo"}

	diff := DiffTexts(previous, []string{"Mundo", "Hola"})

	if diff.HasChanges() {
		t.Error("Expected no changes for identical texts")
	}

	if len(diff.Retained) != 2 {
		t.Errorf("Expected 2 retained, got %d", len(diff.Retained))
	}
}

func TestDiffTexts_AllNew(t *testing.T) {
	diff := DiffTexts(nil, []string{"Hola", "Mundo", "Hola"})

	if d := cmp.Diff([]string{"Hola", "Mundo"}, diff.Added); d != "" {
		t.Errorf("Added mismatch (-want +got):\n%s", d)
	}

	if len(diff.Unseen) != 0 {
		t.Errorf("Expected 0 unseen, got %d", len(diff.Unseen))
	}
}

func TestDiffTexts_Mixed(t *testing.T) {
	previous := TranslationMap{
		"Hola":     "hola",
		"Mundo":    "mundo",
		"Borrado":  "borrado",
		"Anterior": "anterior",
	}

	diff := DiffTexts(previous, []string{"Hola", "Mundo", "Nuevo"})

	want := &DiffResult{
		Added:    []string{"Nuevo"},
		Retained: []string{"Hola", "Mundo"},
		Unseen:   []string{"Anterior", "Borrado"},
	}
	if d := cmp.Diff(want, diff); d != "" {
		t.Errorf("DiffTexts mismatch (-want +got):\n%s", d)
	}

	stats := diff.Stats()
	if stats.Added != 1 || stats.Retained != 2 || stats.Unseen != 2 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if !diff.HasChanges() {
		t.Error("Expected changes when a text is added")
	}
}
