package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"vendor-match-service/internal/domain"
	"vendor-match-service/internal/ports"
)

// RequestService orchestrates the request flow: create, geocode, filter
// candidates, broadcast, collect offers, rank, and accept a selection.
// It is the engine's composition point over the injected ports.
type RequestService struct {
	Store       ports.RequestStore
	Vendors     ports.VendorDirectory
	Geocoder    ports.Geocoder
	Broadcaster *Broadcaster
	Lifecycle   *Lifecycle
	Notifier    ports.Notifier

	// Category restricts candidate vendors; empty matches all.
	Category string

	mu         sync.Mutex
	collectors map[string]*activeCollection
}

// activeCollection is one in-flight solicitation round: its offer fan-in
// point plus the cancel that tears the fan-out down on terminal transitions.
type activeCollection struct {
	col    *OfferCollector
	cancel context.CancelFunc
}

// LocationInput is a location as the caller provides it: explicit
// coordinates, a free-text address to geocode, or both. A nil Coords means
// no coordinates were given at all, so a point at exactly lat/lng 0,0 stays
// distinguishable from an address-only location.
type LocationInput struct {
	Coords  *domain.Location
	Address string
}

// CreateRequestParams carries the validated customer intent into the engine.
type CreateRequestParams struct {
	CustomerID  string
	Origin      LocationInput
	Destination LocationInput
	MaxDetourKm float64
	Items       []domain.RequestItem
	Deadline    time.Time
}

// CreateRequest validates and persists a request, selects candidate vendors
// along the route, and starts the solicitation fan-out in the background.
//
// When no vendors are in range the returned request is already Expired;
// that is a normal outcome, not an error.
func (s *RequestService) CreateRequest(ctx context.Context, p CreateRequestParams) (*domain.Request, []Candidate, error) {
	origin, err := s.resolve(ctx, p.Origin)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: resolve origin: %w", err)
	}
	destination, err := s.resolve(ctx, p.Destination)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: resolve destination: %w", err)
	}

	items := make([]domain.RequestItem, len(p.Items))
	copy(items, p.Items)
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = uuid.NewString()
		}
	}

	now := s.now()
	req, err := domain.NewRequest(uuid.NewString(), p.CustomerID, origin, destination,
		p.MaxDetourKm, items, p.Deadline, now)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	if err := s.Store.CreateRequest(ctx, req); err != nil {
		return nil, nil, fmt.Errorf("create request: persist: %w", err)
	}

	vendors, err := s.Vendors.ListActive(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: list vendors: %w", err)
	}
	candidates := SelectCandidates(req.Origin, req.Destination, req.MaxDetourKm, s.Category, vendors)

	if err := s.Lifecycle.Begin(ctx, req, len(candidates)); err != nil {
		if req.Status == domain.StatusExpired {
			log.Printf("request expired at creation: request_id=%s reason=%q", req.ID, ErrNoVendorsInRange)
			return req, nil, nil
		}
		return nil, nil, fmt.Errorf("create request: %w", err)
	}

	go s.runCollection(req, candidates)

	return req, candidates, nil
}

// resolve turns a location input into concrete coordinates. Explicit
// coordinates are always honored; geocoding happens only when the caller
// provided nothing but an address.
func (s *RequestService) resolve(ctx context.Context, in LocationInput) (domain.Location, error) {
	if in.Coords != nil {
		loc := *in.Coords
		if loc.Address == "" {
			loc.Address = in.Address
		}
		return loc, nil
	}
	if in.Address == "" {
		return domain.Location{}, fmt.Errorf("location has neither coordinates nor address")
	}
	if s.Geocoder == nil {
		return domain.Location{}, fmt.Errorf("no geocoder configured for address %q", in.Address)
	}

	resolved, err := s.Geocoder.Geocode(ctx, in.Address)
	if err != nil {
		return domain.Location{}, fmt.Errorf("geocode %q: %w", in.Address, err)
	}
	resolved.Address = in.Address
	return resolved, nil
}

// runCollection drains the broadcast channel into the per-request collector,
// keeps the webhook path open until the deadline, then expires the request
// if the customer never selected a vendor.
func (s *RequestService) runCollection(req *domain.Request, candidates []Candidate) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	col := NewOfferCollector(req.ID, req.Deadline)
	s.track(req.ID, col, cancel)
	defer s.untrack(req.ID)

	for offer := range s.Broadcaster.Broadcast(ctx, req, candidates) {
		s.ingest(ctx, req, col, offer)
	}

	// Solicited responses are done; unsolicited ones may still arrive via
	// the API until the deadline. An accept or cancel in the meantime
	// cancels ctx and ends the wait early.
	if wait := time.Until(req.Deadline); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return
		}
	}

	if err := s.Lifecycle.Expire(context.Background(), req.ID); err != nil {
		log.Printf("expire failed: request_id=%s err=%v", req.ID, err)
	}
}

func (s *RequestService) ingest(ctx context.Context, req *domain.Request, col *OfferCollector, offer *domain.VendorOffer) {
	if !col.Admit(offer, s.now()) {
		// Audit trail for late or superseded responses; they never rank.
		log.Printf("offer discarded: request_id=%s vendor_id=%s submitted_at=%s",
			offer.RequestID, offer.VendorID, offer.SubmittedAt.Format(time.RFC3339))
		return
	}

	if err := s.Store.SaveVendorOffer(ctx, offer); err != nil {
		log.Printf("save offer failed: request_id=%s vendor_id=%s err=%v", offer.RequestID, offer.VendorID, err)
		return
	}

	s.notifyCustomer(ctx, req.CustomerID, map[string]string{
		"event":      "offers_updated",
		"request_id": req.ID,
		"vendor_id":  offer.VendorID,
	})
}

// SubmitVendorOffer ingests a vendor response arriving through the API
// rather than the solicitation round-trip. It reports whether the offer
// entered ranking; late or post-terminal submissions are logged for audit
// and otherwise ignored.
func (s *RequestService) SubmitVendorOffer(ctx context.Context, offer *domain.VendorOffer) (bool, error) {
	req, err := s.Store.GetRequest(ctx, offer.RequestID)
	if err != nil {
		return false, fmt.Errorf("submit vendor offer: get request %s: %w", offer.RequestID, err)
	}

	now := s.now()

	if req.Status.Terminal() || !now.Before(req.Deadline) {
		log.Printf("late offer discarded: request_id=%s vendor_id=%s status=%s", offer.RequestID, offer.VendorID, req.Status)
		return false, nil
	}
	if col := s.collector(req.ID); col != nil && !col.Admit(offer, now) {
		log.Printf("late offer discarded: request_id=%s vendor_id=%s", offer.RequestID, offer.VendorID)
		return false, nil
	}

	if err := s.Store.SaveVendorOffer(ctx, offer); err != nil {
		return false, fmt.Errorf("submit vendor offer: persist: %w", err)
	}

	s.notifyCustomer(ctx, req.CustomerID, map[string]string{
		"event":      "offers_updated",
		"request_id": req.ID,
		"vendor_id":  offer.VendorID,
	})
	return true, nil
}

// GetRequest returns the stored request with its current status.
func (s *RequestService) GetRequest(ctx context.Context, requestID string) (*domain.Request, error) {
	req, err := s.Store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("get request %s: %w", requestID, err)
	}
	return req, nil
}

// RankedOffers derives the current aggregated, ranked quote list for a
// request. The list is recomputed fresh on every call.
func (s *RequestService) RankedOffers(ctx context.Context, requestID string) (*domain.Request, []domain.AggregatedOffer, error) {
	req, err := s.Store.GetRequest(ctx, requestID)
	if err != nil {
		return nil, nil, fmt.Errorf("ranked offers: get request %s: %w", requestID, err)
	}

	offers, err := s.Store.ListVendorOffers(ctx, requestID)
	if err != nil {
		return nil, nil, fmt.Errorf("ranked offers: list offers for %s: %w", requestID, err)
	}

	vendors, err := s.Vendors.ListActive(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("ranked offers: list vendors: %w", err)
	}
	candidates := SelectCandidates(req.Origin, req.Destination, req.MaxDetourKm, s.Category, vendors)

	return req, Rank(req.Items, offers, candidates), nil
}

// AcceptParams is the customer's vendor selection.
type AcceptParams struct {
	RequestID       string
	VendorID        string
	Lines           []domain.OrderLine
	TotalAmount     float64
	Currency        string
	DeliveryAddress *domain.Location
	Notes           string
}

// AcceptSelection atomically accepts one vendor and creates the order.
// Concurrent and duplicate selections receive a SelectionConflictError.
func (s *RequestService) AcceptSelection(ctx context.Context, p AcceptParams) (*domain.Order, error) {
	order, err := domain.NewOrder(uuid.NewString(), p.RequestID, p.VendorID,
		p.Lines, p.TotalAmount, p.Currency, s.now())
	if err != nil {
		return nil, fmt.Errorf("accept selection: %w", err)
	}
	order.DeliveryAddress = p.DeliveryAddress
	order.Notes = p.Notes

	req, err := s.Lifecycle.Accept(ctx, p.RequestID, p.VendorID)
	if err != nil {
		return nil, err
	}
	s.stopCollection(p.RequestID)

	if err := s.Store.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("accept selection: persist order for request %s: %w", p.RequestID, err)
	}

	s.notifyVendor(ctx, p.VendorID, map[string]string{
		"event":      "order_created",
		"order_id":   order.ID,
		"request_id": p.RequestID,
	})
	s.notifyCustomer(ctx, req.CustomerID, map[string]string{
		"event":      "order_confirmed",
		"order_id":   order.ID,
		"request_id": p.RequestID,
		"vendor_id":  p.VendorID,
	})

	return order, nil
}

// CancelRequest aborts a non-terminal request on the customer's behalf.
func (s *RequestService) CancelRequest(ctx context.Context, requestID string) error {
	if err := s.Lifecycle.Cancel(ctx, requestID); err != nil {
		return err
	}
	s.stopCollection(requestID)
	return nil
}

func (s *RequestService) now() time.Time {
	if s.Lifecycle != nil && s.Lifecycle.Now != nil {
		return s.Lifecycle.Now()
	}
	return time.Now()
}

func (s *RequestService) track(requestID string, col *OfferCollector, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collectors == nil {
		s.collectors = make(map[string]*activeCollection)
	}
	s.collectors[requestID] = &activeCollection{col: col, cancel: cancel}
}

func (s *RequestService) untrack(requestID string) {
	s.mu.Lock()
	c := s.collectors[requestID]
	delete(s.collectors, requestID)
	s.mu.Unlock()
	if c != nil {
		c.col.Close()
		c.cancel()
	}
}

// stopCollection tears down an in-flight solicitation round after a terminal
// transition: the collector closes first so a racing solicited offer is
// rejected at admission, then the broadcast context is cancelled so pending
// vendor calls stop waiting out the deadline.
func (s *RequestService) stopCollection(requestID string) {
	s.mu.Lock()
	c := s.collectors[requestID]
	s.mu.Unlock()
	if c == nil {
		return
	}
	c.col.Close()
	c.cancel()
}

func (s *RequestService) collector(requestID string) *OfferCollector {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.collectors[requestID]; c != nil {
		return c.col
	}
	return nil
}

func (s *RequestService) notifyVendor(ctx context.Context, vendorID string, payload map[string]string) {
	if s.Notifier == nil {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.Notifier.NotifyVendor(ctx, vendorID, b); err != nil {
		log.Printf("notify vendor failed: vendor_id=%s err=%v", vendorID, err)
	}
}

func (s *RequestService) notifyCustomer(ctx context.Context, customerID string, payload map[string]string) {
	if s.Notifier == nil {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.Notifier.NotifyCustomer(ctx, customerID, b); err != nil {
		log.Printf("notify customer failed: customer_id=%s err=%v", customerID, err)
	}
}
