package services

import (
	"math"
	"slices"

	"vendor-match-service/internal/domain"
)

// Candidate is a vendor eligible for solicitation, with its detour distance
// from the customer's route.
type Candidate struct {
	Vendor   *domain.Vendor
	DetourKm float64
}

// SelectCandidates returns the vendors within maxDetourKm of the route,
// ordered by ascending detour distance (vendor id breaks ties).
//
// Detour is approximated as the haversine distance to the nearer route
// endpoint, not the true distance to the route polyline. That keeps the
// filter independent of any road API; a polyline upgrade would replace only
// the distance expression below.
func SelectCandidates(
	origin, destination domain.Location,
	maxDetourKm float64,
	category string,
	vendors []*domain.Vendor,
) []Candidate {
	candidates := make([]Candidate, 0, len(vendors))

	for _, v := range vendors {
		// Eligibility filtering happens before any distance math.
		if !v.Active || v.Location == nil || !v.ServesCategory(category) {
			continue
		}

		toOrigin := domain.HaversineKm(*v.Location, origin)
		toDestination := domain.HaversineKm(*v.Location, destination)
		detour := math.Min(toOrigin, toDestination)

		if detour <= maxDetourKm {
			candidates = append(candidates, Candidate{Vendor: v, DetourKm: detour})
		}
	}

	slices.SortFunc(candidates, func(a, b Candidate) int {
		if a.DetourKm < b.DetourKm {
			return -1
		}
		if a.DetourKm > b.DetourKm {
			return 1
		}
		if a.Vendor.ID < b.Vendor.ID {
			return -1
		}
		if a.Vendor.ID > b.Vendor.ID {
			return 1
		}
		return 0
	})

	return candidates
}
