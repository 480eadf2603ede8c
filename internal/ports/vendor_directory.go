package ports

import (
	"context"

	"vendor-match-service/internal/domain"
)

// Port: a boundary for retrieving registered vendors.
type VendorDirectory interface {
	// ListActive returns all vendors eligible for solicitation.
	ListActive(ctx context.Context) ([]*domain.Vendor, error)
	GetVendor(ctx context.Context, id string) (*domain.Vendor, error)
}
