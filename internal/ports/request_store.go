package ports

import (
	"context"
	"errors"

	"vendor-match-service/internal/domain"
)

// ErrNotFound reports a missing record.
var ErrNotFound = errors.New("not found")

// ErrStatusConflict reports a conditional status update that observed a
// different current status than expected. The caller decides whether this is
// a selection race, a duplicate, or an out-of-order transition.
var ErrStatusConflict = errors.New("status conflict")

// Port: persistence boundary for Request, VendorOffer and Order records.
//
// TransitionStatus is the single atomic compare-and-set the at-most-one
// acceptance guarantee rests on: the update applies only when the stored
// status equals from, otherwise ErrStatusConflict.
type RequestStore interface {
	CreateRequest(ctx context.Context, req *domain.Request) error
	GetRequest(ctx context.Context, id string) (*domain.Request, error)

	// TransitionStatus atomically moves the request from one status to
	// another. acceptedVendorID is recorded only on transitions into
	// StatusAccepted and is empty otherwise.
	TransitionStatus(ctx context.Context, id string, from, to domain.Status, acceptedVendorID string) error

	// SaveVendorOffer upserts a vendor's response keyed by (request, vendor).
	// A later SubmittedAt replaces the stored offer entirely; an earlier one
	// is ignored.
	SaveVendorOffer(ctx context.Context, offer *domain.VendorOffer) error
	ListVendorOffers(ctx context.Context, requestID string) ([]*domain.VendorOffer, error)

	CreateOrder(ctx context.Context, order *domain.Order) error
}
