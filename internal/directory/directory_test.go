package directory

import "testing"

func names(hs []Hospital) []string {
	var out []string
	for _, h := range hs {
		out = append(out, h.Name)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		specialty string
		want      []string
	}{
		{"all", []string{"Pulmonary Care Hospital", "City Medical Center", "Comprehensive Care Hospital", "Neuroscience Institute", "Thyroid & Endocrine Center"}},
		{"", []string{"Pulmonary Care Hospital", "City Medical Center", "Comprehensive Care Hospital", "Neuroscience Institute", "Thyroid & Endocrine Center"}},
		{"thyroid", []string{"City Medical Center", "Comprehensive Care Hospital", "Thyroid & Endocrine Center"}},
		{"Lung", []string{"Pulmonary Care Hospital", "City Medical Center", "Comprehensive Care Hospital"}},
		{"brain", []string{"Comprehensive Care Hospital", "Neuroscience Institute"}},
	}
	for _, tt := range tests {
		got, err := Filter(tt.specialty)
		if err != nil {
			t.Fatalf("Filter(%q): %v", tt.specialty, err)
		}
		g := names(got)
		if len(g) != len(tt.want) {
			t.Fatalf("Filter(%q) = %v, want %v", tt.specialty, g, tt.want)
		}
		for i := range g {
			if g[i] != tt.want[i] {
				t.Fatalf("Filter(%q)[%d] = %q, want %q", tt.specialty, i, g[i], tt.want[i])
			}
		}
	}
}

func TestFilter_UnknownSpecialty(t *testing.T) {
	if _, err := Filter("cardiology"); err == nil {
		t.Fatal("expected error for unknown specialty")
	}
}

func TestFilter_ReturnsCopies(t *testing.T) {
	got, _ := Filter(All)
	got[0].Specialties[0] = "mutated"
	again, _ := Filter(All)
	if again[0].Specialties[0] == "mutated" {
		t.Fatal("Filter must not expose the shared table")
	}
}

func TestStars(t *testing.T) {
	tests := map[float64]string{
		4.5: "★★★★½",
		4.3: "★★★★",
		4.8: "★★★★½",
		5:   "★★★★★",
	}
	for in, want := range tests {
		if got := Stars(in); got != want {
			t.Errorf("Stars(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestLabel(t *testing.T) {
	if Label("thyroid") != "Thyroid" || Label(All) != "All Specialties" {
		t.Fatal("unexpected labels")
	}
}
