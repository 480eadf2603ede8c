package vendors

import (
	"context"
	"time"

	"vendor-match-service/internal/domain"
)

// MockResponse scripts one vendor's behavior for tests.
type MockResponse struct {
	VendorID string
	Offer    *domain.VendorOffer
	Delay    time.Duration
	Err      error
}

// MockSolicitor replays scripted responses, optionally after a delay.
// Vendors without a script decline to respond.
type MockSolicitor struct {
	m map[string]MockResponse
}

func NewMockSolicitor(responses []MockResponse) *MockSolicitor {
	m := make(map[string]MockResponse, len(responses))
	for _, r := range responses {
		m[r.VendorID] = r
	}
	return &MockSolicitor{m: m}
}

func (s *MockSolicitor) Solicit(ctx context.Context, vendor *domain.Vendor, _ *domain.Request) (*domain.VendorOffer, error) {
	r, ok := s.m[vendor.ID]
	if !ok {
		return nil, nil
	}

	if r.Delay > 0 {
		timer := time.NewTimer(r.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return r.Offer, r.Err
}
