package services

import (
	"fmt"
	"math"

	"vendor-match-service/internal/domain"
)

// packEpsilon absorbs float noise when deciding whether a requested quantity
// is an exact multiple of a pack size.
const packEpsilon = 1e-9

// Reconcile converts one vendor line offer into a normalized fulfillment
// computation against the requested quantity.
//
// A (nil, nil) result means the vendor did not address the item (declined
// exact offer, or zero available packs); the item goes to the vendor's
// missing list. An error means the line is unusable, most commonly
// ErrIncompatibleUnitFamily; the rest of the request is unaffected.
func Reconcile(item domain.RequestItem, line domain.LineOffer) (*domain.AggregatedItemOffer, error) {
	switch o := line.(type) {
	case domain.ExactQuantityOffer:
		return reconcileExact(item, o)
	case domain.PackOffer:
		return reconcilePack(item, o)
	default:
		return nil, fmt.Errorf("reconcile item %s: unknown line offer type %T", item.ID, line)
	}
}

func reconcileExact(item domain.RequestItem, o domain.ExactQuantityOffer) (*domain.AggregatedItemOffer, error) {
	if !o.CanFulfill {
		return nil, nil
	}
	if o.TotalPrice <= 0 {
		return nil, fmt.Errorf("reconcile item %s: exact offer price must be positive, got %v", item.ID, o.TotalPrice)
	}

	return &domain.AggregatedItemOffer{
		RequestItemID:       item.ID,
		ProductName:         item.ProductName,
		RequestedQuantity:   item.RequestedQuantity,
		RequestedUnit:       item.RequestedUnit,
		OfferType:           domain.OfferExact,
		FulfillmentQuantity: item.RequestedQuantity,
		FulfillmentUnit:     item.RequestedUnit,
		TotalPrice:          o.TotalPrice,
		PricePerUnit:        o.TotalPrice / item.RequestedQuantity,
		LeadTimeMinutes:     o.LeadTimeMinutes,
		Notes:               o.Notes,
	}, nil
}

func reconcilePack(item domain.RequestItem, o domain.PackOffer) (*domain.AggregatedItemOffer, error) {
	if o.IncompatibleUnit {
		return nil, fmt.Errorf("reconcile item %s: vendor flagged pack unit %v: %w",
			item.ID, o.PackUnit, domain.ErrIncompatibleUnitFamily)
	}
	if o.PackValue <= 0 {
		return nil, fmt.Errorf("reconcile item %s: pack value must be positive, got %v", item.ID, o.PackValue)
	}
	if o.PricePerPack <= 0 {
		return nil, fmt.Errorf("reconcile item %s: price per pack must be positive, got %v", item.ID, o.PricePerPack)
	}

	packValue, err := domain.Convert(o.PackValue, o.PackUnit, item.RequestedUnit)
	if err != nil {
		return nil, fmt.Errorf("reconcile item %s: %w", item.ID, err)
	}

	// Zero available packs is indistinguishable from not addressing the item.
	if o.AvailablePacks <= 0 {
		return nil, nil
	}

	packsNeeded := int(math.Ceil(item.RequestedQuantity/packValue - packEpsilon))
	if packsNeeded < 1 {
		packsNeeded = 1
	}

	agg := &domain.AggregatedItemOffer{
		RequestItemID:     item.ID,
		ProductName:       item.ProductName,
		RequestedQuantity: item.RequestedQuantity,
		RequestedUnit:     item.RequestedUnit,
		FulfillmentUnit:   item.RequestedUnit,
		PackValue:         o.PackValue,
		PackUnit:          o.PackUnit,
		LeadTimeMinutes:   o.LeadTimeMinutes,
		Notes:             o.Notes,
	}

	if packsNeeded > o.AvailablePacks {
		// The vendor covers part of the request: a deficit, not a surplus.
		fulfillment := float64(o.AvailablePacks) * packValue

		agg.OfferType = domain.OfferPartial
		agg.PacksNeeded = o.AvailablePacks
		agg.FulfillmentQuantity = fulfillment
		agg.ShortfallQuantity = item.RequestedQuantity - fulfillment
		agg.TotalPrice = float64(o.AvailablePacks) * o.PricePerPack
		agg.PricePerUnit = agg.TotalPrice / fulfillment
		return agg, nil
	}

	agg.OfferType = domain.OfferPack
	agg.PacksNeeded = packsNeeded

	wholePacks := math.Floor(item.RequestedQuantity/packValue + packEpsilon)
	fraction := item.RequestedQuantity/packValue - wholePacks
	if fraction < packEpsilon {
		fraction = 0
	}

	if fraction > 0 && item.FractionalAllowed && o.AllowsFractional {
		// The vendor sells the last pack partially; the split fee applies to
		// the fractional portion only.
		agg.FulfillmentQuantity = item.RequestedQuantity
		agg.TotalPrice = wholePacks*o.PricePerPack +
			fraction*o.PricePerPack*(1+o.SplitFeePercent/100)
	} else {
		fulfillment := float64(packsNeeded) * packValue
		surplus := fulfillment - item.RequestedQuantity
		if surplus < packEpsilon {
			surplus = 0
			fulfillment = item.RequestedQuantity
		}

		agg.FulfillmentQuantity = fulfillment
		agg.SurplusQuantity = surplus
		agg.TotalPrice = float64(packsNeeded) * o.PricePerPack
	}

	agg.PricePerUnit = agg.TotalPrice / agg.FulfillmentQuantity
	return agg, nil
}
