package handlers

import (
	"fmt"
	"strings"

	"vendor-match-service/internal/api/dto"
	"vendor-match-service/internal/domain"
	"vendor-match-service/internal/services"
)

func toLocationPayload(loc domain.Location) dto.LocationPayload {
	return dto.LocationPayload{Lat: loc.Lat, Lng: loc.Lng, Address: loc.Address}
}

// toLocationInput maps an inbound location; explicit coordinates need both
// lat and lng, otherwise only the address travels on for geocoding.
func toLocationInput(p dto.LocationInputPayload) (services.LocationInput, error) {
	in := services.LocationInput{Address: strings.TrimSpace(p.Address)}
	switch {
	case p.Lat != nil && p.Lng != nil:
		in.Coords = &domain.Location{Lat: *p.Lat, Lng: *p.Lng, Address: in.Address}
	case p.Lat != nil || p.Lng != nil:
		return in, fmt.Errorf("lat and lng must be provided together")
	}
	return in, nil
}

func toRequestView(req *domain.Request) dto.RequestView {
	items := make([]dto.RequestItemView, 0, len(req.Items))
	for _, it := range req.Items {
		packs := make([]dto.SuggestedPackPayload, 0, len(it.SuggestedPacks))
		for _, p := range it.SuggestedPacks {
			packs = append(packs, dto.SuggestedPackPayload{PackValue: p.Value, PackUnit: string(p.Unit)})
		}
		items = append(items, dto.RequestItemView{
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

	return dto.RequestView{
		RequestID:        req.ID,
		UserID:           req.CustomerID,
		Origin:           toLocationPayload(req.Origin),
		Destination:      toLocationPayload(req.Destination),
		MaxDetourKm:      req.MaxDetourKm,
		Items:            items,
		DeadlineUTC:      req.Deadline,
		Status:           string(req.Status),
		AcceptedVendorID: req.AcceptedVendorID,
		CreatedAt:        req.CreatedAt,
	}
}

func toAggregatedOffers(offers []domain.AggregatedOffer) []dto.AggregatedOffer {
	out := make([]dto.AggregatedOffer, 0, len(offers))
	for _, o := range offers {
		items := make([]dto.AggregatedItemLine, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, dto.AggregatedItemLine{
				RequestItemID:       it.RequestItemID,
				ProductName:         it.ProductName,
				RequestedQtyValue:   it.RequestedQuantity,
				RequestedQtyUnit:    string(it.RequestedUnit),
				OfferType:           string(it.OfferType),
				FulfillmentQtyValue: it.FulfillmentQuantity,
				FulfillmentQtyUnit:  string(it.FulfillmentUnit),
				SurplusQty:          it.SurplusQuantity,
				ShortfallQty:        it.ShortfallQuantity,
				TotalPrice:          it.TotalPrice,
				PricePerUnit:        it.PricePerUnit,
				PacksNeeded:         it.PacksNeeded,
				PackValue:           it.PackValue,
				PackUnit:            string(it.PackUnit),
				LeadTimeMinutes:     it.LeadTimeMinutes,
				Notes:               it.Notes,
			})
		}

		missing := make([]dto.MissingItemLine, 0, len(o.Missing))
		for _, m := range o.Missing {
			missing = append(missing, dto.MissingItemLine{
				RequestItemID: m.RequestItemID,
				ShortfallQty:  m.ShortfallQuantity,
				Unit:          string(m.Unit),
				Reason:        m.Reason,
			})
		}

		out = append(out, dto.AggregatedOffer{
			VendorID:             o.VendorID,
			VendorName:           o.VendorName,
			TotalPrice:           o.TotalPrice,
			Currency:             o.Currency,
			MaxLeadTimeMinutes:   o.LeadTimeMinutes,
			DistanceKm:           o.DistanceKm,
			CanFulfillCompletely: o.CanFulfillCompletely,
			Items:                items,
			Missing:              missing,
		})
	}
	return out
}

// toVendorOffer maps a submitted vendor response onto the domain offer.
func toVendorOffer(in dto.VendorResponseRequest) (*domain.VendorOffer, error) {
	if in.RequestID == "" || in.VendorID == "" {
		return nil, fmt.Errorf("request_id and vendor_id are required")
	}

	lines := make([]domain.LineOffer, 0, len(in.Offers))
	for i, o := range in.Offers {
		if o.RequestItemID == "" {
			return nil, fmt.Errorf("offers[%d]: missing request_item_id", i)
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
			lines = append(lines, line)

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
				return nil, fmt.Errorf("offers[%d]: pack_offer requires a positive pack_value", i)
			}
			lines = append(lines, line)

		default:
			return nil, fmt.Errorf("offers[%d]: unknown type %q", i, o.Type)
		}
	}

	return &domain.VendorOffer{
		RequestID:   in.RequestID,
		VendorID:    in.VendorID,
		SubmittedAt: in.SubmittedAt,
		Lines:       lines,
	}, nil
}
