package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vendor-match-service/internal/adapters/repositories"
	"vendor-match-service/internal/adapters/vendors"
	"vendor-match-service/internal/api/dto"
	"vendor-match-service/internal/domain"
	"vendor-match-service/internal/services"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := repositories.NewMemoryStore()
	directory := repositories.NewMemoryVendorDirectory(
		&domain.Vendor{
			ID:       "vendor-near",
			Name:     "Corner Store",
			Location: &domain.Location{Lat: 18.5204, Lng: 73.8567},
			Active:   true,
		},
		&domain.Vendor{
			ID:       "vendor-far",
			Name:     "Out of Town",
			Location: &domain.Location{Lat: 19.5204, Lng: 74.8567},
			Active:   true,
		},
	)

	svc := &services.RequestService{
		Store:       store,
		Vendors:     directory,
		Broadcaster: &services.Broadcaster{Solicitor: vendors.NewMockSolicitor(nil)},
		Lifecycle:   &services.Lifecycle{Store: store},
	}

	srv := httptest.NewServer(NewRouter(svc))
	t.Cleanup(srv.Close)
	return srv
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func coord(v float64) *float64 { return &v }

func createRequest(t *testing.T, srv *httptest.Server) dto.RequestView {
	t.Helper()

	resp := postJSON(t, srv.URL+"/requests", dto.CreateRequestRequest{
		UserID:      "cust-1",
		Origin:      dto.LocationInputPayload{Lat: coord(18.5204), Lng: coord(73.8567)},
		Destination: dto.LocationInputPayload{Lat: coord(18.5300), Lng: coord(73.8700)},
		MaxDetourKm: 5,
		Items: []dto.CreateRequestItem{
			{ProductName: "rice", RequestedQtyValue: 1.5, RequestedQtyUnit: "kg"},
		},
		DeadlineUTC: time.Now().Add(time.Hour),
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create request: status %d", resp.StatusCode)
	}
	return decodeBody[dto.RequestView](t, resp)
}

func submitOffer(t *testing.T, srv *httptest.Server, requestID, vendorID, itemID string, pricePerPack float64) {
	t.Helper()

	packValue := 1.0
	available := 5
	resp := postJSON(t, srv.URL+"/requests/"+requestID+"/responses", dto.VendorResponseRequest{
		RequestID:   requestID,
		VendorID:    vendorID,
		SubmittedAt: time.Now(),
		Offers: []dto.VendorOfferPayload{{
			Type:            "pack_offer",
			RequestItemID:   itemID,
			PackValue:       &packValue,
			PackUnit:        "kg",
			PricePerPack:    &pricePerPack,
			AvailablePacks:  &available,
			Currency:        "INR",
			LeadTimeMinutes: 30,
		}},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("submit offer: status %d", resp.StatusCode)
	}
}

func TestCreateRequestFiltersAndBroadcasts(t *testing.T) {
	srv := newTestServer(t)

	view := createRequest(t, srv)
	if view.Status != string(domain.StatusAwaitingSelection) {
		t.Errorf("status = %s, want awaiting_selection", view.Status)
	}
	if view.CandidateCount == nil || *view.CandidateCount != 1 {
		t.Errorf("candidate count = %v, want 1 (far vendor filtered out)", view.CandidateCount)
	}
	if len(view.Items) != 1 || view.Items[0].RequestItemID == "" {
		t.Errorf("items missing generated ids: %+v", view.Items)
	}
	if len(view.Items[0].SuggestedPacks) == 0 {
		t.Errorf("default suggested packs not attached: %+v", view.Items[0])
	}
}

func TestRankedOffersRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	view := createRequest(t, srv)
	submitOffer(t, srv, view.RequestID, "vendor-near", view.Items[0].RequestItemID, 80)

	resp, err := http.Get(srv.URL + "/requests/" + view.RequestID + "/offers")
	if err != nil {
		t.Fatalf("GET offers: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET offers: status %d", resp.StatusCode)
	}
	ranked := decodeBody[dto.RankedOffersResponse](t, resp)

	if len(ranked.Offers) != 1 {
		t.Fatalf("ranked offers = %d, want 1", len(ranked.Offers))
	}
	offer := ranked.Offers[0]
	if offer.VendorID != "vendor-near" || !offer.CanFulfillCompletely {
		t.Errorf("unexpected top offer: %+v", offer)
	}
	if offer.TotalPrice != 160 { // 2 packs of 1 kg at 80
		t.Errorf("total price = %v, want 160", offer.TotalPrice)
	}
}

func TestOrderCreationAndSelectionConflict(t *testing.T) {
	srv := newTestServer(t)
	view := createRequest(t, srv)
	itemID := view.Items[0].RequestItemID
	submitOffer(t, srv, view.RequestID, "vendor-near", itemID, 80)

	orderBody := dto.CreateOrderRequest{
		RequestID: view.RequestID,
		VendorID:  "vendor-near",
		AcceptedOffers: []dto.AcceptedOffer{
			{RequestItemID: itemID, OfferType: "pack", FinalPrice: 160, FinalQtyValue: 2, FinalQtyUnit: "kg"},
		},
		TotalAmount: 160,
		Currency:    "INR",
	}

	resp := postJSON(t, srv.URL+"/orders", orderBody)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order: status %d", resp.StatusCode)
	}
	order := decodeBody[dto.OrderResponse](t, resp)
	if order.VendorID != "vendor-near" || order.OrderID == "" {
		t.Errorf("unexpected order: %+v", order)
	}

	// A second selection, even for another vendor, must get a conflict
	// naming the winner.
	orderBody.VendorID = "vendor-far"
	resp = postJSON(t, srv.URL+"/orders", orderBody)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second selection: status %d, want 409", resp.StatusCode)
	}
	conflict := decodeBody[dto.ConflictResponse](t, resp)
	if conflict.AcceptedVendorID != "vendor-near" {
		t.Errorf("conflict names %q, want vendor-near", conflict.AcceptedVendorID)
	}
}

func TestLateOfferAuditedNotRanked(t *testing.T) {
	srv := newTestServer(t)
	view := createRequest(t, srv)
	itemID := view.Items[0].RequestItemID
	submitOffer(t, srv, view.RequestID, "vendor-near", itemID, 80)

	// Accept, then submit another offer: 202 for audit, but the ranking
	// stays frozen on what was stored before the terminal state.
	resp := postJSON(t, srv.URL+"/orders", dto.CreateOrderRequest{
		RequestID: view.RequestID,
		VendorID:  "vendor-near",
		AcceptedOffers: []dto.AcceptedOffer{
			{RequestItemID: itemID, OfferType: "pack", FinalPrice: 160, FinalQtyValue: 2, FinalQtyUnit: "kg"},
		},
		TotalAmount: 160,
		Currency:    "INR",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create order: status %d", resp.StatusCode)
	}

	packValue := 1.0
	available := 5
	price := 10.0
	late := postJSON(t, srv.URL+"/requests/"+view.RequestID+"/responses", dto.VendorResponseRequest{
		VendorID:    "vendor-far",
		SubmittedAt: time.Now(),
		Offers: []dto.VendorOfferPayload{{
			Type:           "pack_offer",
			RequestItemID:  itemID,
			PackValue:      &packValue,
			PackUnit:       "kg",
			PricePerPack:   &price,
			AvailablePacks: &available,
			Currency:       "INR",
		}},
	})
	ack := decodeBody[dto.VendorResponseAck](t, late)
	if late.StatusCode != http.StatusAccepted {
		t.Fatalf("late submission: status %d, want 202", late.StatusCode)
	}
	if ack.Accepted {
		t.Error("late submission reported as ranked")
	}
}

func TestCreateRequestRejectsLopsidedCoordinates(t *testing.T) {
	srv := newTestServer(t)

	resp := postJSON(t, srv.URL+"/requests", dto.CreateRequestRequest{
		UserID:      "cust-1",
		Origin:      dto.LocationInputPayload{Lat: coord(18.5204)},
		Destination: dto.LocationInputPayload{Lat: coord(18.5300), Lng: coord(73.8700)},
		MaxDetourKm: 5,
		Items: []dto.CreateRequestItem{
			{ProductName: "rice", RequestedQtyValue: 1.5, RequestedQtyUnit: "kg"},
		},
		DeadlineUTC: time.Now().Add(time.Hour),
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for lat without lng", resp.StatusCode)
	}
}

func TestRequestNotFound(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/requests/nope")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}
