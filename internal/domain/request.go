package domain

import (
	"errors"
	"fmt"
	"time"
)

// Status is the lifecycle state of a Request.
type Status string

const (
	StatusCreated           Status = "created"
	StatusBroadcasting      Status = "broadcasting"
	StatusCollectingOffers  Status = "collecting_offers"
	StatusAwaitingSelection Status = "awaiting_selection"
	StatusAccepted          Status = "accepted"
	StatusExpired           Status = "expired"
	StatusCancelled         Status = "cancelled"
)

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusExpired || s == StatusCancelled
}

// CanTransition reports whether the state machine permits moving to next.
// Cancellation is allowed from any non-terminal state.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}

	switch s {
	case StatusCreated:
		return next == StatusBroadcasting || next == StatusExpired
	case StatusBroadcasting:
		return next == StatusCollectingOffers
	case StatusCollectingOffers:
		return next == StatusAwaitingSelection || next == StatusExpired
	case StatusAwaitingSelection:
		return next == StatusAccepted || next == StatusExpired
	}
	return false
}

// SuggestedPack is a pack-size hint forwarded to vendors.
type SuggestedPack struct {
	Value float64
	Unit  Unit
}

// RequestItem is one line of the shopping list.
type RequestItem struct {
	ID                string
	ProductName       string
	NormalizedHint    string
	RequestedQuantity float64
	RequestedUnit     Unit
	FractionalAllowed bool
	Notes             string
	SuggestedPacks    []SuggestedPack
}

// Request is one customer shopping intent, solicited to vendors along the
// customer's route. Requests are never deleted, only terminalized.
type Request struct {
	ID               string
	CustomerID       string
	Origin           Location
	Destination      Location
	MaxDetourKm      float64
	Items            []RequestItem
	Deadline         time.Time
	Status           Status
	AcceptedVendorID string
	CreatedAt        time.Time
}

// NewRequest validates and assembles a Request in the Created state.
// Items are normalized (g->kg, ml->l above 1000) and receive default
// suggested packs when the customer provided none.
func NewRequest(
	id string,
	customerID string,
	origin, destination Location,
	maxDetourKm float64,
	items []RequestItem,
	deadline time.Time,
	now time.Time,
) (*Request, error) {
	if id == "" {
		return nil, errors.New("new request: id must be non-empty")
	}
	if customerID == "" {
		return nil, errors.New("new request: customerID must be non-empty")
	}
	if maxDetourKm <= 0 {
		return nil, fmt.Errorf("new request: maxDetourKm must be positive, got %v", maxDetourKm)
	}
	if len(items) == 0 {
		return nil, errors.New("new request: items must be non-empty")
	}
	if !deadline.After(now) {
		return nil, fmt.Errorf("new request: deadline %v is not after creation time %v", deadline, now)
	}

	normalized := make([]RequestItem, 0, len(items))
	for i, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("new request: items[%d]: id must be non-empty", i)
		}
		if it.ProductName == "" {
			return nil, fmt.Errorf("new request: items[%d]: product name must be non-empty", i)
		}
		if it.RequestedQuantity <= 0 {
			return nil, fmt.Errorf("new request: items[%d]: requested quantity must be positive, got %v", i, it.RequestedQuantity)
		}
		if it.RequestedUnit.Family() == FamilyUnknown {
			return nil, fmt.Errorf("new request: items[%d]: unknown unit %q", i, it.RequestedUnit)
		}

		it = NormalizeItem(it)
		if len(it.SuggestedPacks) == 0 {
			it.SuggestedPacks = DefaultSuggestedPacks(it.RequestedUnit)
		}
		normalized = append(normalized, it)
	}

	return &Request{
		ID:          id,
		CustomerID:  customerID,
		Origin:      origin,
		Destination: destination,
		MaxDetourKm: maxDetourKm,
		Items:       normalized,
		Deadline:    deadline,
		Status:      StatusCreated,
		CreatedAt:   now,
	}, nil
}

// NormalizeItem converts large small-unit quantities to the larger unit of
// the same family (1500 g -> 1.5 kg, 2000 ml -> 2 l) so vendors see the
// conventional form.
func NormalizeItem(it RequestItem) RequestItem {
	switch {
	case it.RequestedUnit == UnitGram && it.RequestedQuantity >= 1000:
		it.RequestedQuantity *= 0.001
		it.RequestedUnit = UnitKilogram
	case it.RequestedUnit == UnitMilliliter && it.RequestedQuantity >= 1000:
		it.RequestedQuantity *= 0.001
		it.RequestedUnit = UnitLiter
	}
	return it
}

// DefaultSuggestedPacks returns the conventional pack sizes for a unit.
func DefaultSuggestedPacks(u Unit) []SuggestedPack {
	switch u {
	case UnitKilogram:
		return []SuggestedPack{{0.25, UnitKilogram}, {0.5, UnitKilogram}, {1, UnitKilogram}, {2, UnitKilogram}}
	case UnitGram:
		return []SuggestedPack{{250, UnitGram}, {500, UnitGram}, {1000, UnitGram}}
	case UnitLiter:
		return []SuggestedPack{{0.25, UnitLiter}, {0.5, UnitLiter}, {1, UnitLiter}}
	case UnitMilliliter:
		return []SuggestedPack{{250, UnitMilliliter}, {500, UnitMilliliter}, {1000, UnitMilliliter}}
	case UnitPiece:
		return []SuggestedPack{{1, UnitPiece}, {2, UnitPiece}, {4, UnitPiece}, {8, UnitPiece}}
	}
	return nil
}

// Item returns the request item with the given id.
func (r *Request) Item(itemID string) (RequestItem, bool) {
	for _, it := range r.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return RequestItem{}, false
}
