package domain

import (
	"errors"
	"fmt"
	"time"
)

// OrderLine is one accepted reconciled line carried into the order.
type OrderLine struct {
	RequestItemID string
	OfferType     OfferType
	FinalPrice    float64
	FinalQuantity float64
	FinalUnit     Unit
}

// Order is the persisted result of accepting exactly one vendor's
// aggregated offer for a request.
type Order struct {
	ID              string
	RequestID       string
	VendorID        string
	Lines           []OrderLine
	TotalAmount     float64
	Currency        string
	DeliveryAddress *Location
	Notes           string
	CreatedAt       time.Time
}

// NewOrder validates and assembles an Order.
func NewOrder(
	id, requestID, vendorID string,
	lines []OrderLine,
	totalAmount float64,
	currency string,
	now time.Time,
) (*Order, error) {
	if id == "" || requestID == "" || vendorID == "" {
		return nil, errors.New("new order: id, requestID and vendorID must be non-empty")
	}
	if len(lines) == 0 {
		return nil, errors.New("new order: accepted offers must be non-empty")
	}
	if totalAmount <= 0 {
		return nil, fmt.Errorf("new order: total amount must be positive, got %v", totalAmount)
	}
	if currency == "" {
		return nil, errors.New("new order: currency must be non-empty")
	}

	return &Order{
		ID:          id,
		RequestID:   requestID,
		VendorID:    vendorID,
		Lines:       lines,
		TotalAmount: totalAmount,
		Currency:    currency,
		CreatedAt:   now,
	}, nil
}
