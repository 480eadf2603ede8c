package domain

// OfferType classifies a reconciled line.
type OfferType string

const (
	OfferExact   OfferType = "exact"
	OfferPack    OfferType = "pack"
	OfferPartial OfferType = "partial"
)

// AggregatedItemOffer is one reconciled line: a vendor's offer for one item
// normalized into the item's requested unit and priced.
//
// FulfillmentQuantity may exceed RequestedQuantity when pack rounding
// produces surplus, or fall short of it (OfferPartial) when the vendor's
// available packs cap supply.
type AggregatedItemOffer struct {
	RequestItemID     string
	ProductName       string
	RequestedQuantity float64
	RequestedUnit     Unit

	OfferType           OfferType
	FulfillmentQuantity float64
	FulfillmentUnit     Unit
	SurplusQuantity     float64
	ShortfallQuantity   float64

	TotalPrice   float64
	PricePerUnit float64

	PacksNeeded int
	PackValue   float64
	PackUnit    Unit

	LeadTimeMinutes int
	Notes           string
}

// MissingItem records a request item the vendor did not address or could not
// fully supply, with the shortfall when the vendor covers part of it.
type MissingItem struct {
	RequestItemID     string
	ShortfallQuantity float64
	Unit              Unit
	Reason            string
}

// AggregatedOffer is the fully reconciled, comparable per-vendor quote.
// It is always derived fresh from the vendor's latest VendorOffer, never
// stored as mutable state.
type AggregatedOffer struct {
	VendorID             string
	VendorName           string
	TotalPrice           float64
	Currency             string
	LeadTimeMinutes      int
	DistanceKm           float64
	CanFulfillCompletely bool
	Items                []AggregatedItemOffer
	Missing              []MissingItem
}
