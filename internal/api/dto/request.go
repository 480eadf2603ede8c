package dto

import "time"

type LocationPayload struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address,omitempty"`
}

// LocationInputPayload is the inbound form of a location. Coordinates are
// pointers so "lat/lng absent, geocode the address" is distinguishable from
// an explicit point at 0,0.
type LocationInputPayload struct {
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Address string   `json:"address,omitempty"`
}

type SuggestedPackPayload struct {
	PackValue float64 `json:"pack_value"`
	PackUnit  string  `json:"pack_unit"`
}

type CreateRequestItem struct {
	ProductName           string                 `json:"product_name"`
	NormalizedHint        string                 `json:"normalized_hint,omitempty"`
	RequestedQtyValue     float64                `json:"requested_qty_value"`
	RequestedQtyUnit      string                 `json:"requested_qty_unit"`
	AllowFractionalByUser bool                   `json:"allow_fractional_by_user"`
	Notes                 string                 `json:"notes,omitempty"`
	SuggestedPacks        []SuggestedPackPayload `json:"suggested_packs,omitempty"`
}

type CreateRequestRequest struct {
	UserID      string               `json:"user_id"`
	Origin      LocationInputPayload `json:"origin"`
	Destination LocationInputPayload `json:"destination"`
	MaxDetourKm float64              `json:"max_detour_km"`
	Items       []CreateRequestItem  `json:"items"`
	DeadlineUTC time.Time            `json:"deadline_utc"`
}

type RequestItemView struct {
	RequestItemID         string                 `json:"request_item_id"`
	ProductName           string                 `json:"product_name"`
	NormalizedHint        string                 `json:"normalized_hint,omitempty"`
	RequestedQtyValue     float64                `json:"requested_qty_value"`
	RequestedQtyUnit      string                 `json:"requested_qty_unit"`
	AllowFractionalByUser bool                   `json:"allow_fractional_by_user"`
	Notes                 string                 `json:"notes,omitempty"`
	SuggestedPacks        []SuggestedPackPayload `json:"suggested_packs,omitempty"`
}

type RequestView struct {
	RequestID        string            `json:"request_id"`
	UserID           string            `json:"user_id"`
	Origin           LocationPayload   `json:"origin"`
	Destination      LocationPayload   `json:"destination"`
	MaxDetourKm      float64           `json:"max_detour_km"`
	Items            []RequestItemView `json:"items"`
	DeadlineUTC      time.Time         `json:"deadline_utc"`
	Status           string            `json:"status"`
	AcceptedVendorID string            `json:"accepted_vendor_id,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
	CandidateCount   *int              `json:"candidate_count,omitempty"`
}
