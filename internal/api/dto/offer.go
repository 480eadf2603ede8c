package dto

import "time"

// VendorResponseRequest is a vendor's response payload submitted through
// the API. Field names match the solicitation round-trip wire format.
type VendorResponseRequest struct {
	RequestID   string               `json:"request_id"`
	VendorID    string               `json:"vendor_id"`
	SubmittedAt time.Time            `json:"submitted_at"`
	Offers      []VendorOfferPayload `json:"offers"`
}

type VendorOfferPayload struct {
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

type VendorResponseAck struct {
	RequestID string `json:"request_id"`
	VendorID  string `json:"vendor_id"`
	Accepted  bool   `json:"accepted"`
}

// Ranked aggregated offers as served to the customer.

type RankedOffersResponse struct {
	RequestID string            `json:"request_id"`
	Status    string            `json:"status"`
	Offers    []AggregatedOffer `json:"offers"`
}

type AggregatedOffer struct {
	VendorID             string               `json:"vendor_id"`
	VendorName           string               `json:"vendor_name,omitempty"`
	TotalPrice           float64              `json:"total_price"`
	Currency             string               `json:"currency,omitempty"`
	MaxLeadTimeMinutes   int                  `json:"max_lead_time_minutes"`
	DistanceKm           float64              `json:"distance_km"`
	CanFulfillCompletely bool                 `json:"can_fulfill_completely"`
	Items                []AggregatedItemLine `json:"items"`
	Missing              []MissingItemLine    `json:"missing,omitempty"`
}

type AggregatedItemLine struct {
	RequestItemID     string  `json:"request_item_id"`
	ProductName       string  `json:"product_name"`
	RequestedQtyValue float64 `json:"requested_qty_value"`
	RequestedQtyUnit  string  `json:"requested_qty_unit"`

	OfferType           string  `json:"offer_type"`
	FulfillmentQtyValue float64 `json:"fulfillment_qty_value"`
	FulfillmentQtyUnit  string  `json:"fulfillment_qty_unit"`
	SurplusQty          float64 `json:"surplus_qty,omitempty"`
	ShortfallQty        float64 `json:"shortfall_qty,omitempty"`

	TotalPrice   float64 `json:"total_price"`
	PricePerUnit float64 `json:"price_per_unit"`

	PacksNeeded int     `json:"packs_needed,omitempty"`
	PackValue   float64 `json:"pack_value,omitempty"`
	PackUnit    string  `json:"pack_unit,omitempty"`

	LeadTimeMinutes int    `json:"lead_time_minutes"`
	Notes           string `json:"notes,omitempty"`
}

type MissingItemLine struct {
	RequestItemID string  `json:"request_item_id"`
	ShortfallQty  float64 `json:"shortfall_qty,omitempty"`
	Unit          string  `json:"unit,omitempty"`
	Reason        string  `json:"reason"`
}
