package repositories

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"vendor-match-service/internal/domain"
	"vendor-match-service/internal/ports"
)

// MemoryStore is an in-memory RequestStore used by tests and local runs.
// The conditional status update is guarded by the store mutex, giving the
// same at-most-one-winner semantics as the Postgres conditional UPDATE.
type MemoryStore struct {
	mu       sync.RWMutex
	requests map[string]*domain.Request
	offers   map[string]map[string]*domain.VendorOffer
	orders   map[string]*domain.Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		requests: make(map[string]*domain.Request),
		offers:   make(map[string]map[string]*domain.VendorOffer),
		orders:   make(map[string]*domain.Order),
	}
}

func (m *MemoryStore) CreateRequest(_ context.Context, req *domain.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.requests[req.ID]; ok {
		return fmt.Errorf("memory store: request %s already exists", req.ID)
	}
	m.requests[req.ID] = cloneRequest(req)
	return nil
}

func (m *MemoryStore) GetRequest(_ context.Context, id string) (*domain.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	req, ok := m.requests[id]
	if !ok {
		return nil, fmt.Errorf("memory store: request %s: %w", id, ports.ErrNotFound)
	}
	return cloneRequest(req), nil
}

func (m *MemoryStore) TransitionStatus(_ context.Context, id string, from, to domain.Status, acceptedVendorID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[id]
	if !ok {
		return fmt.Errorf("memory store: request %s: %w", id, ports.ErrNotFound)
	}
	if req.Status != from {
		return fmt.Errorf("memory store: request %s is %s, expected %s: %w",
			id, req.Status, from, ports.ErrStatusConflict)
	}

	req.Status = to
	if to == domain.StatusAccepted {
		req.AcceptedVendorID = acceptedVendorID
	}
	return nil
}

func (m *MemoryStore) SaveVendorOffer(_ context.Context, offer *domain.VendorOffer) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	byVendor, ok := m.offers[offer.RequestID]
	if !ok {
		byVendor = make(map[string]*domain.VendorOffer)
		m.offers[offer.RequestID] = byVendor
	}

	if prev, ok := byVendor[offer.VendorID]; ok && prev.SubmittedAt.After(offer.SubmittedAt) {
		return nil
	}
	byVendor[offer.VendorID] = cloneOffer(offer)
	return nil
}

func (m *MemoryStore) ListVendorOffers(_ context.Context, requestID string) ([]*domain.VendorOffer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byVendor := m.offers[requestID]
	out := make([]*domain.VendorOffer, 0, len(byVendor))
	for _, o := range byVendor {
		out = append(out, cloneOffer(o))
	}
	slices.SortFunc(out, func(a, b *domain.VendorOffer) int {
		if a.VendorID < b.VendorID {
			return -1
		}
		if a.VendorID > b.VendorID {
			return 1
		}
		return 0
	})
	return out, nil
}

func (m *MemoryStore) CreateOrder(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.orders[order.ID]; ok {
		return fmt.Errorf("memory store: order %s already exists", order.ID)
	}
	cp := *order
	cp.Lines = slices.Clone(order.Lines)
	m.orders[order.ID] = &cp
	return nil
}

func cloneRequest(req *domain.Request) *domain.Request {
	cp := *req
	cp.Items = make([]domain.RequestItem, len(req.Items))
	for i, it := range req.Items {
		it.SuggestedPacks = slices.Clone(it.SuggestedPacks)
		cp.Items[i] = it
	}
	return &cp
}

func cloneOffer(o *domain.VendorOffer) *domain.VendorOffer {
	cp := *o
	cp.Lines = slices.Clone(o.Lines)
	return &cp
}
