package domain

import (
	"testing"
	"time"
)

func validItems() []RequestItem {
	return []RequestItem{
		{ID: "item-1", ProductName: "rice", RequestedQuantity: 1.5, RequestedUnit: UnitKilogram},
	}
}

func TestNewRequestValidation(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	deadline := now.Add(30 * time.Minute)
	origin := Location{Lat: 18.52, Lng: 73.85}
	dest := Location{Lat: 18.53, Lng: 73.87}

	if _, err := NewRequest("r1", "c1", origin, dest, 5, validItems(), deadline, now); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	if _, err := NewRequest("r1", "c1", origin, dest, 5, nil, deadline, now); err == nil {
		t.Error("empty items accepted")
	}
	if _, err := NewRequest("r1", "c1", origin, dest, 0, validItems(), deadline, now); err == nil {
		t.Error("zero detour accepted")
	}
	if _, err := NewRequest("r1", "c1", origin, dest, 5, validItems(), now, now); err == nil {
		t.Error("deadline equal to creation time accepted")
	}

	zeroQty := validItems()
	zeroQty[0].RequestedQuantity = 0
	if _, err := NewRequest("r1", "c1", origin, dest, 5, zeroQty, deadline, now); err == nil {
		t.Error("zero requested quantity accepted")
	}

	badUnit := validItems()
	badUnit[0].RequestedUnit = Unit("oz")
	if _, err := NewRequest("r1", "c1", origin, dest, 5, badUnit, deadline, now); err == nil {
		t.Error("unknown unit accepted")
	}
}

func TestNewRequestNormalizesAndSuggestsPacks(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	items := []RequestItem{
		{ID: "item-1", ProductName: "flour", RequestedQuantity: 1500, RequestedUnit: UnitGram},
		{ID: "item-2", ProductName: "milk", RequestedQuantity: 2000, RequestedUnit: UnitMilliliter},
		{ID: "item-3", ProductName: "eggs", RequestedQuantity: 12, RequestedUnit: UnitPiece},
	}

	req, err := NewRequest("r1", "c1", Location{Lat: 1, Lng: 1}, Location{Lat: 2, Lng: 2}, 5, items, now.Add(time.Hour), now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Items[0].RequestedUnit != UnitKilogram || req.Items[0].RequestedQuantity != 1.5 {
		t.Errorf("grams not normalized: %v %v", req.Items[0].RequestedQuantity, req.Items[0].RequestedUnit)
	}
	if req.Items[1].RequestedUnit != UnitLiter || req.Items[1].RequestedQuantity != 2 {
		t.Errorf("milliliters not normalized: %v %v", req.Items[1].RequestedQuantity, req.Items[1].RequestedUnit)
	}
	if req.Items[2].RequestedUnit != UnitPiece {
		t.Errorf("pieces altered: %v", req.Items[2].RequestedUnit)
	}

	for _, it := range req.Items {
		if len(it.SuggestedPacks) == 0 {
			t.Errorf("item %s has no suggested packs", it.ID)
		}
		for _, p := range it.SuggestedPacks {
			if p.Unit.Family() != it.RequestedUnit.Family() {
				t.Errorf("item %s: suggested pack unit %v outside family of %v", it.ID, p.Unit, it.RequestedUnit)
			}
		}
	}
}

func TestStatusTransitions(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusCreated, StatusBroadcasting},
		{StatusCreated, StatusExpired},
		{StatusBroadcasting, StatusCollectingOffers},
		{StatusCollectingOffers, StatusAwaitingSelection},
		{StatusAwaitingSelection, StatusAccepted},
		{StatusAwaitingSelection, StatusExpired},
		{StatusCreated, StatusCancelled},
		{StatusBroadcasting, StatusCancelled},
		{StatusCollectingOffers, StatusCancelled},
		{StatusAwaitingSelection, StatusCancelled},
	}
	for _, c := range allowed {
		if !c.from.CanTransition(c.to) {
			t.Errorf("%v -> %v should be allowed", c.from, c.to)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusAccepted, StatusCancelled},
		{StatusExpired, StatusAwaitingSelection},
		{StatusCancelled, StatusBroadcasting},
		{StatusCreated, StatusAccepted},
		{StatusAwaitingSelection, StatusBroadcasting},
	}
	for _, c := range denied {
		if c.from.CanTransition(c.to) {
			t.Errorf("%v -> %v should be denied", c.from, c.to)
		}
	}
}
