package repositories

import (
	"context"
	"fmt"
	"sync"

	"vendor-match-service/internal/domain"
	"vendor-match-service/internal/ports"
)

// MemoryVendorDirectory is an in-memory VendorDirectory for tests and
// local runs.
type MemoryVendorDirectory struct {
	mu      sync.RWMutex
	vendors map[string]*domain.Vendor
}

func NewMemoryVendorDirectory(vendors ...*domain.Vendor) *MemoryVendorDirectory {
	d := &MemoryVendorDirectory{vendors: make(map[string]*domain.Vendor, len(vendors))}
	for _, v := range vendors {
		cp := *v
		d.vendors[v.ID] = &cp
	}
	return d
}

func (d *MemoryVendorDirectory) ListActive(_ context.Context) ([]*domain.Vendor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*domain.Vendor, 0, len(d.vendors))
	for _, v := range d.vendors {
		if !v.Active {
			continue
		}
		cp := *v
		out = append(out, &cp)
	}
	return out, nil
}

func (d *MemoryVendorDirectory) GetVendor(_ context.Context, id string) (*domain.Vendor, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	v, ok := d.vendors[id]
	if !ok {
		return nil, fmt.Errorf("memory directory: vendor %s: %w", id, ports.ErrNotFound)
	}
	cp := *v
	return &cp, nil
}
