package intent

import (
	"strings"
	"testing"
)

func TestNew_Valid(t *testing.T) {
	in, err := New("flood risk maps", []string{"Zagreb"}, []string{"hydrology", "flooding"}, []string{"DGU"}, "hr")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if in.RawTheme() != "flood risk maps" {
		t.Errorf("RawTheme() = %q", in.RawTheme())
	}
	if len(in.Locations()) != 1 || in.Locations()[0] != "Zagreb" {
		t.Errorf("Locations() = %v", in.Locations())
	}
	if len(in.Themes()) != 2 {
		t.Errorf("Themes() = %v", in.Themes())
	}
	if len(in.Publishers()) != 1 || in.Publishers()[0] != "DGU" {
		t.Errorf("Publishers() = %v", in.Publishers())
	}
	if in.Language() != "hr" {
		t.Errorf("Language() = %q", in.Language())
	}
}

func TestNew_TrimsRawTheme(t *testing.T) {
	in, err := New("  protected areas  ", nil, nil, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.RawTheme() != "protected areas" {
		t.Errorf("RawTheme() = %q, want trimmed", in.RawTheme())
	}
}

func TestNew_EmptyRawTheme(t *testing.T) {
	for _, raw := range []string{"", "   ", "\t\n"} {
		_, err := New(raw, nil, nil, nil, "")
		if err == nil {
			t.Errorf("New(%q) expected error", raw)
		}
		if err != nil && !strings.Contains(err.Error(), "required") {
			t.Errorf("error = %q, want 'required'", err)
		}
	}
}

func TestNew_CleansLists(t *testing.T) {
	in, err := New("theme", []string{" Split ", "", "  "}, []string{"", "cadastre "}, nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(in.Locations()) != 1 || in.Locations()[0] != "Split" {
		t.Errorf("Locations() = %v", in.Locations())
	}
	if len(in.Themes()) != 1 || in.Themes()[0] != "cadastre" {
		t.Errorf("Themes() = %v", in.Themes())
	}
}

func TestHasLocation(t *testing.T) {
	withLoc, _ := New("theme", []string{"Rijeka"}, nil, nil, "")
	if !withLoc.HasLocation() {
		t.Error("HasLocation() = false, want true")
	}

	noLoc, _ := New("theme", nil, nil, nil, "")
	if noLoc.HasLocation() {
		t.Error("HasLocation() = true, want false")
	}

	// Whitespace-only entries do not count as a location.
	blankLoc, _ := New("theme", []string{"  "}, nil, nil, "")
	if blankLoc.HasLocation() {
		t.Error("HasLocation() = true for blank entries, want false")
	}
}

func TestPrimaryLocation(t *testing.T) {
	in, _ := New("theme", []string{"Zagreb", "Split"}, nil, nil, "")
	if in.PrimaryLocation() != "Zagreb" {
		t.Errorf("PrimaryLocation() = %q, want first entry", in.PrimaryLocation())
	}

	none, _ := New("theme", nil, nil, nil, "")
	if none.PrimaryLocation() != "" {
		t.Errorf("PrimaryLocation() = %q, want empty", none.PrimaryLocation())
	}
}

func TestCoreSearchTerms(t *testing.T) {
	in, _ := New("water quality", nil, []string{"rivers", "monitoring"}, nil, "")
	terms := in.CoreSearchTerms()
	want := []string{"water quality", "rivers", "monitoring"}
	if len(terms) != len(want) {
		t.Fatalf("CoreSearchTerms() len = %d, want %d", len(terms), len(want))
	}
	for i := range want {
		if terms[i] != want[i] {
			t.Errorf("terms[%d] = %q, want %q", i, terms[i], want[i])
		}
	}
}

func TestCoreSearchTerms_ThemeOnly(t *testing.T) {
	in, _ := New("orthophoto", nil, nil, nil, "")
	terms := in.CoreSearchTerms()
	if len(terms) != 1 || terms[0] != "orthophoto" {
		t.Errorf("CoreSearchTerms() = %v", terms)
	}
}
