package dto

import "time"

// CreateOrderRequest is the customer's selection of one vendor's quote.
type CreateOrderRequest struct {
	RequestID       string           `json:"request_id"`
	VendorID        string           `json:"vendor_id"`
	AcceptedOffers  []AcceptedOffer  `json:"accepted_offers"`
	TotalAmount     float64          `json:"total_amount"`
	Currency        string           `json:"currency"`
	DeliveryAddress *LocationPayload `json:"delivery_address,omitempty"`
	Notes           string           `json:"notes,omitempty"`
}

type AcceptedOffer struct {
	RequestItemID string  `json:"request_item_id"`
	OfferType     string  `json:"offer_type"`
	FinalPrice    float64 `json:"final_price"`
	FinalQtyValue float64 `json:"final_qty_value"`
	FinalQtyUnit  string  `json:"final_qty_unit"`
}

type OrderResponse struct {
	OrderID     string    `json:"order_id"`
	RequestID   string    `json:"request_id"`
	VendorID    string    `json:"vendor_id"`
	TotalAmount float64   `json:"total_amount"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
}

// ConflictResponse is returned when a selection attempt loses: the request
// was already accepted, expired, or cancelled.
type ConflictResponse struct {
	Error            string `json:"error"`
	RequestID        string `json:"request_id"`
	AcceptedVendorID string `json:"accepted_vendor_id,omitempty"`
}
