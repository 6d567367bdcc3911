package result

import (
	"testing"

	"github.com/kailas-cloud/geodex/internal/domain/dataset"
)

func TestNew(t *testing.T) {
	meta := dataset.Reconstruct("ds-1", "Flood zones", []string{"flood"}, nil, nil)

	r := New("ds-1", 0.87, "flood hazard zones of the Sava basin", meta)

	if r.DatasetID() != "ds-1" {
		t.Errorf("DatasetID() = %q", r.DatasetID())
	}
	if r.Score() != 0.87 {
		t.Errorf("Score() = %f", r.Score())
	}
	if !r.HasScore() {
		t.Error("HasScore() = false, want true")
	}
	if r.Content() != "flood hazard zones of the Sava basin" {
		t.Errorf("Content() = %q", r.Content())
	}
	if r.Metadata().Title() != "Flood zones" {
		t.Errorf("Metadata().Title() = %q", r.Metadata().Title())
	}
}

func TestNewUnscored(t *testing.T) {
	r := NewUnscored("ds-2", "content", dataset.Metadata{})
	if r.HasScore() {
		t.Error("HasScore() = true, want false")
	}
	if r.Score() != 0 {
		t.Errorf("Score() = %f, want 0", r.Score())
	}
	if r.DatasetID() != "ds-2" {
		t.Errorf("DatasetID() = %q", r.DatasetID())
	}
}

func TestNew_ZeroScoreIsStillScored(t *testing.T) {
	// A backend score of exactly 0 is a real score, distinct from unscored.
	r := New("ds-3", 0, "", dataset.Metadata{})
	if !r.HasScore() {
		t.Error("HasScore() = false for explicit zero score, want true")
	}
}
