package ports

import (
	"context"

	"vendor-match-service/internal/domain"
)

// Port: resolves a free-text address to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Location, error)
}
