package domain

import "time"

// LineOffer is one vendor's answer for one request item. It is a sealed
// union: exactly ExactQuantityOffer or PackOffer, so impossible field
// combinations cannot be constructed.
type LineOffer interface {
	ItemID() string
	LeadTime() int

	lineOffer()
}

// ExactQuantityOffer fulfills the requested quantity as-is for a total price.
type ExactQuantityOffer struct {
	RequestItemID   string
	CanFulfill      bool
	TotalPrice      float64
	Currency        string
	LeadTimeMinutes int
	Notes           string
}

func (o ExactQuantityOffer) ItemID() string { return o.RequestItemID }
func (o ExactQuantityOffer) LeadTime() int  { return o.LeadTimeMinutes }
func (o ExactQuantityOffer) lineOffer()     {}

// PackOffer fulfills in fixed-size packs. AvailablePacks caps supply.
// AllowsFractional permits selling a fraction of one pack, with
// SplitFeePercent added to the fractional portion's price.
type PackOffer struct {
	RequestItemID    string
	PackValue        float64
	PackUnit         Unit
	PricePerPack     float64
	AvailablePacks   int
	AllowsFractional bool
	SplitFeePercent  float64
	IncompatibleUnit bool
	Currency         string
	LeadTimeMinutes  int
	Notes            string
}

func (o PackOffer) ItemID() string { return o.RequestItemID }
func (o PackOffer) LeadTime() int  { return o.LeadTimeMinutes }
func (o PackOffer) lineOffer()     {}

// VendorOffer is one vendor's full response to a Request. A vendor may omit
// items it cannot supply at all. A later VendorOffer from the same vendor for
// the same request supersedes the earlier one entirely.
type VendorOffer struct {
	RequestID   string
	VendorID    string
	SubmittedAt time.Time
	Lines       []LineOffer
}
