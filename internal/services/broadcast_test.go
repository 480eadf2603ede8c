package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"vendor-match-service/internal/adapters/vendors"
	"vendor-match-service/internal/domain"
)

func broadcastRequest(deadline time.Time) *domain.Request {
	return &domain.Request{
		ID:         "req-1",
		CustomerID: "cust-1",
		Items: []domain.RequestItem{
			{ID: "item-1", ProductName: "rice", RequestedQuantity: 1, RequestedUnit: domain.UnitKilogram},
		},
		Deadline: deadline,
		Status:   domain.StatusAwaitingSelection,
	}
}

func broadcastCandidates(ids ...string) []Candidate {
	out := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		out = append(out, Candidate{Vendor: &domain.Vendor{ID: id, Active: true}})
	}
	return out
}

func quickOffer(vendorID string) *domain.VendorOffer {
	return &domain.VendorOffer{
		RequestID:   "req-1",
		VendorID:    vendorID,
		SubmittedAt: time.Now(),
		Lines: []domain.LineOffer{
			domain.PackOffer{RequestItemID: "item-1", PackValue: 1, PackUnit: domain.UnitKilogram, PricePerPack: 50, AvailablePacks: 5},
		},
	}
}

func TestBroadcastCollectsAllResponders(t *testing.T) {
	b := &Broadcaster{Solicitor: vendors.NewMockSolicitor([]vendors.MockResponse{
		{VendorID: "v1", Offer: quickOffer("v1")},
		{VendorID: "v2", Offer: quickOffer("v2")},
		{VendorID: "v3", Offer: quickOffer("v3")},
	})}

	req := broadcastRequest(time.Now().Add(2 * time.Second))
	got := map[string]bool{}
	for offer := range b.Broadcast(context.Background(), req, broadcastCandidates("v1", "v2", "v3")) {
		got[offer.VendorID] = true
	}

	if len(got) != 3 {
		t.Fatalf("collected %d offers, want 3: %v", len(got), got)
	}
}

func TestBroadcastSlowVendorDoesNotBlockOthers(t *testing.T) {
	b := &Broadcaster{Solicitor: vendors.NewMockSolicitor([]vendors.MockResponse{
		{VendorID: "v-fast", Offer: quickOffer("v-fast")},
		{VendorID: "v-slow", Offer: quickOffer("v-slow"), Delay: 5 * time.Second},
		{VendorID: "v-err", Err: errors.New("connection refused")},
	})}

	req := broadcastRequest(time.Now().Add(300 * time.Millisecond))

	start := time.Now()
	got := map[string]bool{}
	for offer := range b.Broadcast(context.Background(), req, broadcastCandidates("v-fast", "v-slow", "v-err")) {
		got[offer.VendorID] = true
	}
	elapsed := time.Since(start)

	if !got["v-fast"] {
		t.Error("fast vendor's offer missing")
	}
	if got["v-slow"] {
		t.Error("slow vendor responded past the deadline but was collected")
	}
	if got["v-err"] {
		t.Error("failed vendor produced an offer")
	}
	if elapsed > 2*time.Second {
		t.Errorf("broadcast took %v; the deadline should have cut it off", elapsed)
	}
}

func TestBroadcastNonRespondersAreAbsent(t *testing.T) {
	// No script for v2: it declines to respond.
	b := &Broadcaster{Solicitor: vendors.NewMockSolicitor([]vendors.MockResponse{
		{VendorID: "v1", Offer: quickOffer("v1")},
	})}

	req := broadcastRequest(time.Now().Add(time.Second))
	count := 0
	for range b.Broadcast(context.Background(), req, broadcastCandidates("v1", "v2")) {
		count++
	}

	if count != 1 {
		t.Fatalf("collected %d offers, want 1", count)
	}
}

func TestBroadcastChannelClosesOnEmptyCandidates(t *testing.T) {
	b := &Broadcaster{Solicitor: vendors.NewMockSolicitor(nil)}
	req := broadcastRequest(time.Now().Add(time.Second))

	select {
	case _, ok := <-b.Broadcast(context.Background(), req, nil):
		if ok {
			t.Fatal("unexpected offer on empty candidate set")
		}
	case <-time.After(time.Second):
		t.Fatal("channel never closed")
	}
}
