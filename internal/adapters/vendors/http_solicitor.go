package vendors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"vendor-match-service/internal/adapters/httpx"
	"vendor-match-service/internal/domain"
	"vendor-match-service/internal/platform/obs"
)

// Wire shapes for the vendor round-trip.

type solicitationPayload struct {
	RequestID   string             `json:"request_id"`
	UserID      string             `json:"user_id"`
	Location    locationPayload    `json:"location"`
	Items       []solicitationItem `json:"items"`
	DeadlineUTC string             `json:"deadline_utc"`
}

type locationPayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type solicitationItem struct {
	RequestItemID         string        `json:"request_item_id"`
	ProductName           string        `json:"product_name"`
	NormalizedHint        string        `json:"normalized_hint,omitempty"`
	RequestedQtyValue     float64       `json:"requested_qty_value"`
	RequestedQtyUnit      string        `json:"requested_qty_unit"`
	AllowFractionalByUser bool          `json:"allow_fractional_by_user"`
	Notes                 string        `json:"notes,omitempty"`
	SuggestedPacks        []packPayload `json:"suggested_packs"`
}

type packPayload struct {
	PackValue float64 `json:"pack_value"`
	PackUnit  string  `json:"pack_unit"`
}

type vendorResponse struct {
	RequestID   string          `json:"request_id"`
	VendorID    string          `json:"vendor_id"`
	SubmittedAt time.Time       `json:"submitted_at"`
	Offers      []responseOffer `json:"offers"`
}

type responseOffer struct {
	Type          string `json:"type"`
	RequestItemID string `json:"request_item_id"`

	CanFulfillExact *bool    `json:"can_fulfill_exact,omitempty"`
	PriceTotal      *float64 `json:"price_total,omitempty"`

	PackValue         *float64 `json:"pack_value,omitempty"`
	PackUnit          string   `json:"pack_unit,omitempty"`
	PricePerPack      *float64 `json:"price_per_pack,omitempty"`
	AvailablePacks    *int     `json:"available_packs,omitempty"`
	FractionalAllowed bool     `json:"fractional_allowed,omitempty"`
	SplitFeePercent   float64  `json:"split_fee_percent,omitempty"`

	Currency         string `json:"currency"`
	LeadTimeMinutes  int    `json:"lead_time_minutes"`
	Notes            string `json:"notes,omitempty"`
	IncompatibleUnit bool   `json:"incompatible_unit,omitempty"`
}

// HTTPSolicitor posts solicitation payloads to each vendor's endpoint and
// decodes the synchronous response into a VendorOffer. A vendor answering
// 204 or with an empty offer list has declined.
type HTTPSolicitor struct {
	client *http.Client
}

func NewHTTPSolicitor(client *http.Client) *HTTPSolicitor {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPSolicitor{client: client}
}

func (s *HTTPSolicitor) Solicit(ctx context.Context, vendor *domain.Vendor, req *domain.Request) (_ *domain.VendorOffer, err error) {
	defer obs.Time(ctx, "vendor.solicit")(&err)

	if vendor.Endpoint == "" {
		return nil, fmt.Errorf("solicit vendor %s: no endpoint configured", vendor.ID)
	}

	body, err := json.Marshal(buildSolicitation(req))
	if err != nil {
		return nil, fmt.Errorf("solicit vendor %s: encode payload: %w", vendor.ID, err)
	}

	resp, err := httpx.DoWithRetry(ctx, s.client, func() (*http.Request, error) {
		hr, err := http.NewRequestWithContext(ctx, http.MethodPost, vendor.Endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		hr.Header.Set("Content-Type", "application/json")
		hr.Header.Set("Accept", "application/json")
		return hr, nil
	})
	if err != nil {
		return nil, fmt.Errorf("solicit vendor %s: %w", vendor.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	var decoded vendorResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("solicit vendor %s: decode response: %w", vendor.ID, err)
	}
	if len(decoded.Offers) == 0 {
		return nil, nil
	}

	offer, err := decodeVendorResponse(decoded, vendor.ID, req.ID)
	if err != nil {
		return nil, fmt.Errorf("solicit vendor %s: %w", vendor.ID, err)
	}
	return offer, nil
}

func buildSolicitation(req *domain.Request) solicitationPayload {
	items := make([]solicitationItem, 0, len(req.Items))
	for _, it := range req.Items {
		packs := make([]packPayload, 0, len(it.SuggestedPacks))
		for _, p := range it.SuggestedPacks {
			packs = append(packs, packPayload{PackValue: p.Value, PackUnit: string(p.Unit)})
		}
		items = append(items, solicitationItem{
			RequestItemID:         it.ID,
			ProductName:           it.ProductName,
			NormalizedHint:        it.NormalizedHint,
			RequestedQtyValue:     it.RequestedQuantity,
			RequestedQtyUnit:      string(it.RequestedUnit),
			AllowFractionalByUser: it.FractionalAllowed,
			Notes:                 it.Notes,
			SuggestedPacks:        packs,
		})
	}

	return solicitationPayload{
		RequestID:   req.ID,
		UserID:      req.CustomerID,
		Location:    locationPayload{Lat: req.Origin.Lat, Lng: req.Origin.Lng},
		Items:       items,
		DeadlineUTC: req.Deadline.UTC().Format(time.RFC3339),
	}
}

// decodeVendorResponse maps the wire response onto the domain offer. The
// response's own request_id/vendor_id must agree with the solicitation.
func decodeVendorResponse(in vendorResponse, vendorID, requestID string) (*domain.VendorOffer, error) {
	if in.RequestID != "" && in.RequestID != requestID {
		return nil, fmt.Errorf("response names request %s, expected %s", in.RequestID, requestID)
	}
	if in.VendorID != "" && in.VendorID != vendorID {
		return nil, fmt.Errorf("response names vendor %s, expected %s", in.VendorID, vendorID)
	}

	submittedAt := in.SubmittedAt
	if submittedAt.IsZero() {
		submittedAt = time.Now()
	}

	lines := make([]domain.LineOffer, 0, len(in.Offers))
	for i, o := range in.Offers {
		line, err := decodeResponseOffer(o)
		if err != nil {
			return nil, fmt.Errorf("offers[%d]: %w", i, err)
		}
		lines = append(lines, line)
	}

	return &domain.VendorOffer{
		RequestID:   requestID,
		VendorID:    vendorID,
		SubmittedAt: submittedAt,
		Lines:       lines,
	}, nil
}

func decodeResponseOffer(o responseOffer) (domain.LineOffer, error) {
	if o.RequestItemID == "" {
		return nil, fmt.Errorf("missing request_item_id")
	}

	switch o.Type {
	case "exact_qty_offer":
		line := domain.ExactQuantityOffer{
			RequestItemID:   o.RequestItemID,
			Currency:        o.Currency,
			LeadTimeMinutes: o.LeadTimeMinutes,
			Notes:           o.Notes,
		}
		if o.CanFulfillExact != nil {
			line.CanFulfill = *o.CanFulfillExact
		}
		if o.PriceTotal != nil {
			line.TotalPrice = *o.PriceTotal
		}
		return line, nil

	case "pack_offer":
		line := domain.PackOffer{
			RequestItemID:    o.RequestItemID,
			PackUnit:         domain.Unit(o.PackUnit),
			AllowsFractional: o.FractionalAllowed,
			SplitFeePercent:  o.SplitFeePercent,
			IncompatibleUnit: o.IncompatibleUnit,
			Currency:         o.Currency,
			LeadTimeMinutes:  o.LeadTimeMinutes,
			Notes:            o.Notes,
		}
		if o.PackValue != nil {
			line.PackValue = *o.PackValue
		}
		if o.PricePerPack != nil {
			line.PricePerPack = *o.PricePerPack
		}
		if o.AvailablePacks != nil {
			line.AvailablePacks = *o.AvailablePacks
		}
		if line.PackValue <= 0 {
			return nil, fmt.Errorf("pack_offer with non-positive pack_value")
		}
		return line, nil
	}

	return nil, fmt.Errorf("unknown offer type %q", o.Type)
}
