package services

import (
	"testing"

	"vendor-match-service/internal/domain"
)

func loc(lat, lng float64) *domain.Location {
	return &domain.Location{Lat: lat, Lng: lng}
}

func TestSelectCandidatesFiltersByDetour(t *testing.T) {
	origin := domain.Location{Lat: 18.5204, Lng: 73.8567}
	destination := domain.Location{Lat: 18.5300, Lng: 73.8700}

	atOrigin := &domain.Vendor{ID: "v-near", Active: true, Location: loc(18.5204, 73.8567)}
	// Roughly 50 km north of the route.
	farAway := &domain.Vendor{ID: "v-far", Active: true, Location: loc(18.9704, 73.8567)}

	got := SelectCandidates(origin, destination, 5, "", []*domain.Vendor{farAway, atOrigin})

	if len(got) != 1 {
		t.Fatalf("expected exactly 1 candidate, got %d", len(got))
	}
	if got[0].Vendor.ID != "v-near" {
		t.Fatalf("expected v-near, got %q", got[0].Vendor.ID)
	}
	if got[0].DetourKm != 0 {
		t.Errorf("detour for vendor at origin = %v, want 0", got[0].DetourKm)
	}
}

func TestSelectCandidatesExcludesIneligible(t *testing.T) {
	origin := domain.Location{Lat: 18.52, Lng: 73.85}
	destination := domain.Location{Lat: 18.53, Lng: 73.87}

	vendors := []*domain.Vendor{
		{ID: "inactive", Active: false, Location: loc(18.52, 73.85)},
		{ID: "no-location", Active: true},
		{ID: "wrong-category", Active: true, Location: loc(18.52, 73.85), Categories: []string{"pharmacy"}},
		{ID: "ok", Active: true, Location: loc(18.52, 73.85), Categories: []string{"grocery"}},
	}

	got := SelectCandidates(origin, destination, 5, "grocery", vendors)

	if len(got) != 1 || got[0].Vendor.ID != "ok" {
		t.Fatalf("expected only vendor \"ok\", got %+v", got)
	}
}

func TestSelectCandidatesOrderedByDetour(t *testing.T) {
	origin := domain.Location{Lat: 18.5204, Lng: 73.8567}
	destination := domain.Location{Lat: 18.5300, Lng: 73.8700}

	vendors := []*domain.Vendor{
		{ID: "b", Active: true, Location: loc(18.5250, 73.8600)},
		{ID: "a", Active: true, Location: loc(18.5204, 73.8567)},
		{ID: "c", Active: true, Location: loc(18.5350, 73.8750)},
	}

	got := SelectCandidates(origin, destination, 10, "", vendors)

	if len(got) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].DetourKm < got[i-1].DetourKm {
			t.Fatalf("candidates out of order: %v before %v", got[i-1].DetourKm, got[i].DetourKm)
		}
	}
	if got[0].Vendor.ID != "a" {
		t.Errorf("nearest vendor = %q, want \"a\"", got[0].Vendor.ID)
	}
}

func TestSelectCandidatesMonotonicInRadius(t *testing.T) {
	origin := domain.Location{Lat: 18.5204, Lng: 73.8567}
	destination := domain.Location{Lat: 18.5300, Lng: 73.8700}

	vendors := []*domain.Vendor{
		{ID: "v1", Active: true, Location: loc(18.5204, 73.8567)},
		{ID: "v2", Active: true, Location: loc(18.5500, 73.8900)},
		{ID: "v3", Active: true, Location: loc(18.6000, 73.9500)},
		{ID: "v4", Active: true, Location: loc(18.9704, 73.8567)},
	}

	// Widening the radius must never drop an existing candidate.
	prev := map[string]bool{}
	for _, radius := range []float64{1, 5, 10, 25, 100} {
		got := SelectCandidates(origin, destination, radius, "", vendors)

		seen := map[string]bool{}
		for _, c := range got {
			seen[c.Vendor.ID] = true
		}
		for id := range prev {
			if !seen[id] {
				t.Fatalf("radius %v dropped candidate %q present at a smaller radius", radius, id)
			}
		}
		prev = seen
	}
}
