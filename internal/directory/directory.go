// Package directory lists hospitals that treat the conditions the app
// screens for.
package directory

import (
	"fmt"
	"slices"
	"strings"
)

// Specialty values accepted by Filter.
const (
	All     = "all"
	Thyroid = "thyroid"
	Lung    = "lung"
	Brain   = "brain"
)

// Hospital is one directory entry.
type Hospital struct {
	ID          int      `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Specialties []string `json:"specialties" yaml:"specialties"`
	Address     string   `json:"address" yaml:"address"`
	DistanceMi  float64  `json:"distance_miles" yaml:"distance_miles"`
	Rating      float64  `json:"rating" yaml:"rating"`
	Phone       string   `json:"phone" yaml:"phone"`
}

// Treats reports whether h lists specialty.
func (h Hospital) Treats(specialty string) bool {
	return slices.Contains(h.Specialties, specialty)
}

var hospitals = []Hospital{
	{1, "City Medical Center", []string{Thyroid, Lung}, "123 Healthcare Ave, Medical District", 1.2, 4.5, "(555) 123-4567"},
	{2, "Neuroscience Institute", []string{Brain}, "456 Neurology Blvd, Research Park", 2.4, 4.8, "(555) 987-6543"},
	{3, "Pulmonary Care Hospital", []string{Lung}, "789 Respiratory Road, Health Zone", 0.8, 4.3, "(555) 234-5678"},
	{4, "Thyroid & Endocrine Center", []string{Thyroid}, "321 Hormone Highway, Care Complex", 3.1, 4.6, "(555) 876-5432"},
	{5, "Comprehensive Care Hospital", []string{Thyroid, Lung, Brain}, "555 Wellness Way, Treatment Town", 1.9, 4.7, "(555) 345-6789"},
}

// Specialties returns the filter choices, "all" first.
func Specialties() []string {
	return []string{All, Thyroid, Lung, Brain}
}

// Filter returns hospitals treating specialty, nearest first. "" and "all"
// match everything.
func Filter(specialty string) ([]Hospital, error) {
	specialty = strings.ToLower(strings.TrimSpace(specialty))
	if specialty == "" {
		specialty = All
	}
	if !slices.Contains(Specialties(), specialty) {
		return nil, fmt.Errorf("unknown specialty %q (want one of %s)", specialty, strings.Join(Specialties(), ", "))
	}

	var out []Hospital
	for _, h := range hospitals {
		if specialty == All || h.Treats(specialty) {
			h.Specialties = slices.Clone(h.Specialties)
			out = append(out, h)
		}
	}
	slices.SortStableFunc(out, func(a, b Hospital) int {
		switch {
		case a.DistanceMi < b.DistanceMi:
			return -1
		case a.DistanceMi > b.DistanceMi:
			return 1
		}
		return 0
	})
	return out, nil
}

// Stars renders a rating as whole stars plus a half star when the
// fraction is at least .5.
func Stars(rating float64) string {
	full := int(rating)
	s := strings.Repeat("★", full)
	if rating-float64(full) >= 0.5 {
		s += "½"
	}
	return s
}

// Label capitalises a specialty for display.
func Label(specialty string) string {
	if specialty == All {
		return "All Specialties"
	}
	if specialty == "" {
		return ""
	}
	return strings.ToUpper(specialty[:1]) + specialty[1:]
}
