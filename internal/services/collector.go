package services

import (
	"sync"
	"time"

	"vendor-match-service/internal/domain"
)

// OfferCollector is the per-request fan-in point for vendor responses, both
// solicited ones drained from the broadcast channel and unsolicited ones
// pushed through the API.
//
// It enforces the admission rules: offers after the deadline or after the
// collector is closed are rejected (the caller may still persist them for
// audit), and a vendor's later offer supersedes its earlier one entirely.
type OfferCollector struct {
	requestID string
	deadline  time.Time

	mu     sync.Mutex
	latest map[string]*domain.VendorOffer
	closed bool
}

func NewOfferCollector(requestID string, deadline time.Time) *OfferCollector {
	return &OfferCollector{
		requestID: requestID,
		deadline:  deadline,
		latest:    make(map[string]*domain.VendorOffer),
	}
}

// Admit records an offer, reporting whether it entered the working set.
// Rejections: wrong request, arrival at/after the deadline, collector
// closed, or an offer older than the vendor's already-recorded one.
func (c *OfferCollector) Admit(offer *domain.VendorOffer, now time.Time) bool {
	if offer == nil || offer.RequestID != c.requestID {
		return false
	}
	if !now.Before(c.deadline) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false
	}
	if prev, ok := c.latest[offer.VendorID]; ok && prev.SubmittedAt.After(offer.SubmittedAt) {
		return false
	}
	c.latest[offer.VendorID] = offer
	return true
}

// Snapshot returns the current working set, one offer per vendor.
func (c *OfferCollector) Snapshot() []*domain.VendorOffer {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]*domain.VendorOffer, 0, len(c.latest))
	for _, o := range c.latest {
		out = append(out, o)
	}
	return out
}

// Close stops admission; late responses are discarded from then on.
func (c *OfferCollector) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
