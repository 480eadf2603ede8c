package services

import (
	"errors"
	"slices"

	"vendor-match-service/internal/domain"
)

// Rank reconciles every vendor's latest offer against the request items and
// returns comparable per-vendor quotes, ordered for presentation:
// complete fulfillments first, then by total price, lead time, and vendor id.
//
// The result depends only on the offer set, never on arrival order, so
// ranking can be re-run incrementally as offers trickle in. Two offers from
// the same vendor: the later SubmittedAt supersedes entirely.
func Rank(
	items []domain.RequestItem,
	offers []*domain.VendorOffer,
	candidates []Candidate,
) []domain.AggregatedOffer {
	byVendor := make(map[string]Candidate, len(candidates))
	for _, c := range candidates {
		byVendor[c.Vendor.ID] = c
	}

	ranked := make([]domain.AggregatedOffer, 0, len(offers))
	for _, offer := range latestPerVendor(offers) {
		agg := aggregateVendor(items, offer)
		if len(agg.Items) == 0 {
			// A response with no usable line contributes nothing,
			// same as not responding.
			continue
		}

		if c, ok := byVendor[offer.VendorID]; ok {
			agg.VendorName = c.Vendor.Name
			agg.DistanceKm = c.DetourKm
		}
		ranked = append(ranked, agg)
	}

	slices.SortFunc(ranked, compareAggregated)
	return ranked
}

// latestPerVendor collapses resubmissions: per vendor, the offer with the
// latest SubmittedAt wins. Output order is vendor-id sorted so callers see a
// deterministic sequence regardless of arrival order.
func latestPerVendor(offers []*domain.VendorOffer) []*domain.VendorOffer {
	latest := make(map[string]*domain.VendorOffer, len(offers))
	for _, o := range offers {
		if prev, ok := latest[o.VendorID]; ok && prev.SubmittedAt.After(o.SubmittedAt) {
			continue
		}
		latest[o.VendorID] = o
	}

	out := make([]*domain.VendorOffer, 0, len(latest))
	for _, o := range latest {
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b *domain.VendorOffer) int {
		if a.VendorID < b.VendorID {
			return -1
		}
		if a.VendorID > b.VendorID {
			return 1
		}
		return 0
	})
	return out
}

func aggregateVendor(items []domain.RequestItem, offer *domain.VendorOffer) domain.AggregatedOffer {
	agg := domain.AggregatedOffer{VendorID: offer.VendorID}

	linesByItem := make(map[string][]domain.LineOffer, len(offer.Lines))
	for _, line := range offer.Lines {
		linesByItem[line.ItemID()] = append(linesByItem[line.ItemID()], line)

		if agg.Currency == "" {
			agg.Currency = lineCurrency(line)
		}
	}

	for _, item := range items {
		best, reason := bestLineForItem(item, linesByItem[item.ID])
		if best == nil {
			agg.Missing = append(agg.Missing, domain.MissingItem{
				RequestItemID:     item.ID,
				ShortfallQuantity: item.RequestedQuantity,
				Unit:              item.RequestedUnit,
				Reason:            reason,
			})
			continue
		}

		agg.Items = append(agg.Items, *best)
		agg.TotalPrice += best.TotalPrice
		if best.LeadTimeMinutes > agg.LeadTimeMinutes {
			agg.LeadTimeMinutes = best.LeadTimeMinutes
		}

		if best.OfferType == domain.OfferPartial {
			// Partially covered items count as missing for completeness,
			// with the shortfall noted.
			agg.Missing = append(agg.Missing, domain.MissingItem{
				RequestItemID:     item.ID,
				ShortfallQuantity: best.ShortfallQuantity,
				Unit:              item.RequestedUnit,
				Reason:            "insufficient stock",
			})
		}
	}

	agg.CanFulfillCompletely = len(agg.Missing) == 0
	return agg
}

// bestLineForItem reconciles every line the vendor sent for the item and
// keeps the cheapest usable one (exact beats pack on a price tie). The
// second return is the missing-item reason when nothing is usable.
func bestLineForItem(item domain.RequestItem, lines []domain.LineOffer) (*domain.AggregatedItemOffer, string) {
	if len(lines) == 0 {
		return nil, "not offered"
	}

	var best *domain.AggregatedItemOffer
	reason := "cannot fulfill"

	for _, line := range lines {
		candidate, err := Reconcile(item, line)
		if err != nil {
			if errors.Is(err, domain.ErrIncompatibleUnitFamily) {
				reason = "incompatible unit"
			}
			continue
		}
		if candidate == nil {
			continue
		}

		if best == nil ||
			candidate.TotalPrice < best.TotalPrice ||
			(candidate.TotalPrice == best.TotalPrice &&
				candidate.OfferType == domain.OfferExact && best.OfferType != domain.OfferExact) {
			best = candidate
		}
	}

	return best, reason
}

func compareAggregated(a, b domain.AggregatedOffer) int {
	if a.CanFulfillCompletely != b.CanFulfillCompletely {
		if a.CanFulfillCompletely {
			return -1
		}
		return 1
	}
	if a.TotalPrice < b.TotalPrice {
		return -1
	}
	if a.TotalPrice > b.TotalPrice {
		return 1
	}
	if a.LeadTimeMinutes < b.LeadTimeMinutes {
		return -1
	}
	if a.LeadTimeMinutes > b.LeadTimeMinutes {
		return 1
	}
	if a.VendorID < b.VendorID {
		return -1
	}
	if a.VendorID > b.VendorID {
		return 1
	}
	return 0
}

func lineCurrency(line domain.LineOffer) string {
	switch o := line.(type) {
	case domain.ExactQuantityOffer:
		return o.Currency
	case domain.PackOffer:
		return o.Currency
	}
	return ""
}
