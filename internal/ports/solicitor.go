package ports

import (
	"context"

	"vendor-match-service/internal/domain"
)

// Port: delivers one solicitation to one vendor and waits for its response.
//
// A nil offer with a nil error means the vendor declined to respond; the
// broadcaster treats it as an empty contribution. Implementations must
// respect ctx, which carries the request deadline.
type VendorSolicitor interface {
	Solicit(ctx context.Context, vendor *domain.Vendor, req *domain.Request) (*domain.VendorOffer, error)
}
