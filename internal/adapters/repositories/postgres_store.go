package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"vendor-match-service/internal/domain"
	"vendor-match-service/internal/platform/obs"
	"vendor-match-service/internal/ports"
)

// PostgresStore is the Postgres-backed RequestStore. Status transitions use
// a conditional UPDATE so that concurrent attempts resolve to exactly one
// winner at the database, matching the in-memory store's semantics.
type PostgresStore struct{ DB *sql.DB }

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{DB: db}
}

// JSONB records. Offer lines carry a type discriminator because the two
// line shapes share a column.

type itemRecord struct {
	ID                string       `json:"id"`
	ProductName       string       `json:"product_name"`
	NormalizedHint    string       `json:"normalized_hint,omitempty"`
	RequestedQuantity float64      `json:"requested_quantity"`
	RequestedUnit     string       `json:"requested_unit"`
	FractionalAllowed bool         `json:"fractional_allowed"`
	Notes             string       `json:"notes,omitempty"`
	SuggestedPacks    []packRecord `json:"suggested_packs,omitempty"`
}

type packRecord struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

type lineRecord struct {
	Type          string `json:"type"`
	RequestItemID string `json:"request_item_id"`

	CanFulfill bool    `json:"can_fulfill,omitempty"`
	TotalPrice float64 `json:"total_price,omitempty"`

	PackValue        float64 `json:"pack_value,omitempty"`
	PackUnit         string  `json:"pack_unit,omitempty"`
	PricePerPack     float64 `json:"price_per_pack,omitempty"`
	AvailablePacks   int     `json:"available_packs,omitempty"`
	AllowsFractional bool    `json:"allows_fractional,omitempty"`
	SplitFeePercent  float64 `json:"split_fee_percent,omitempty"`
	IncompatibleUnit bool    `json:"incompatible_unit,omitempty"`

	Currency        string `json:"currency,omitempty"`
	LeadTimeMinutes int    `json:"lead_time_minutes,omitempty"`
	Notes           string `json:"notes,omitempty"`
}

type orderLineRecord struct {
	RequestItemID string  `json:"request_item_id"`
	OfferType     string  `json:"offer_type"`
	FinalPrice    float64 `json:"final_price"`
	FinalQuantity float64 `json:"final_quantity"`
	FinalUnit     string  `json:"final_unit"`
}

func (p *PostgresStore) CreateRequest(ctx context.Context, req *domain.Request) (err error) {
	defer obs.Time(ctx, "store.CreateRequest")(&err)

	items, err := encodeItems(req.Items)
	if err != nil {
		return fmt.Errorf("create request: encode items: %w", err)
	}

	query := `
	INSERT INTO requests (
		id, customer_id,
		origin_lat, origin_lng, origin_address,
		dest_lat, dest_lng, dest_address,
		max_detour_km, items, deadline, status, accepted_vendor_id, created_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err = p.DB.ExecContext(ctx, query,
		req.ID, req.CustomerID,
		req.Origin.Lat, req.Origin.Lng, req.Origin.Address,
		req.Destination.Lat, req.Destination.Lng, req.Destination.Address,
		req.MaxDetourKm, items, req.Deadline, string(req.Status), req.AcceptedVendorID, req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create request: insert requests row: %w", err)
	}
	return nil
}

func (p *PostgresStore) GetRequest(ctx context.Context, id string) (_ *domain.Request, err error) {
	defer obs.Time(ctx, "store.GetRequest")(&err)

	query := `
	SELECT
		id, customer_id,
		origin_lat, origin_lng, origin_address,
		dest_lat, dest_lng, dest_address,
		max_detour_km, items, deadline, status, accepted_vendor_id, created_at
	FROM requests
	WHERE id = $1;
	`

	var (
		req      domain.Request
		status   string
		rawItems []byte
	)
	err = p.DB.QueryRowContext(ctx, query, id).Scan(
		&req.ID, &req.CustomerID,
		&req.Origin.Lat, &req.Origin.Lng, &req.Origin.Address,
		&req.Destination.Lat, &req.Destination.Lng, &req.Destination.Address,
		&req.MaxDetourKm, &rawItems, &req.Deadline, &status, &req.AcceptedVendorID, &req.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get request %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get request %s: query requests table: %w", id, err)
	}

	req.Status = domain.Status(status)
	req.Items, err = decodeItems(rawItems)
	if err != nil {
		return nil, fmt.Errorf("get request %s: decode items: %w", id, err)
	}
	return &req, nil
}

// TransitionStatus moves the request from one status to another only when
// the stored status still matches. Zero rows updated means another writer
// got there first.
func (p *PostgresStore) TransitionStatus(ctx context.Context, id string, from, to domain.Status, acceptedVendorID string) (err error) {
	defer obs.Time(ctx, "store.TransitionStatus")(&err)

	query := `
	UPDATE requests
	SET status = $1,
		accepted_vendor_id = CASE WHEN $2 <> '' THEN $2 ELSE accepted_vendor_id END
	WHERE id = $3 AND status = $4;
	`
	res, err := p.DB.ExecContext(ctx, query, string(to), acceptedVendorID, id, string(from))
	if err != nil {
		return fmt.Errorf("transition request %s: update requests row: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition request %s: rows affected: %w", id, err)
	}
	if n == 0 {
		var exists bool
		if err := p.DB.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM requests WHERE id = $1);`, id).Scan(&exists); err != nil {
			return fmt.Errorf("transition request %s: existence check: %w", id, err)
		}
		if !exists {
			return fmt.Errorf("transition request %s: %w", id, ports.ErrNotFound)
		}
		return fmt.Errorf("transition request %s: expected status %s: %w", id, from, ports.ErrStatusConflict)
	}
	return nil
}

// SaveVendorOffer upserts a vendor's offer, keeping only the latest
// submission per (request, vendor).
func (p *PostgresStore) SaveVendorOffer(ctx context.Context, offer *domain.VendorOffer) (err error) {
	defer obs.Time(ctx, "store.SaveVendorOffer")(&err)

	lines, err := encodeLines(offer.Lines)
	if err != nil {
		return fmt.Errorf("save vendor offer: encode lines: %w", err)
	}

	query := `
	INSERT INTO vendor_offers (request_id, vendor_id, submitted_at, lines)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (request_id, vendor_id) DO UPDATE
	SET submitted_at = EXCLUDED.submitted_at,
		lines = EXCLUDED.lines
	WHERE vendor_offers.submitted_at <= EXCLUDED.submitted_at;
	`
	_, err = p.DB.ExecContext(ctx, query, offer.RequestID, offer.VendorID, offer.SubmittedAt, lines)
	if err != nil {
		return fmt.Errorf("save vendor offer: upsert vendor_offers row: %w", err)
	}
	return nil
}

func (p *PostgresStore) ListVendorOffers(ctx context.Context, requestID string) (_ []*domain.VendorOffer, err error) {
	defer obs.Time(ctx, "store.ListVendorOffers")(&err)

	query := `
	SELECT request_id, vendor_id, submitted_at, lines
	FROM vendor_offers
	WHERE request_id = $1
	ORDER BY vendor_id;
	`
	rows, err := p.DB.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("list vendor offers for %s: query vendor_offers table: %w", requestID, err)
	}
	defer rows.Close()

	offers := make([]*domain.VendorOffer, 0, 8)
	for rows.Next() {
		var (
			offer    domain.VendorOffer
			rawLines []byte
		)
		if err := rows.Scan(&offer.RequestID, &offer.VendorID, &offer.SubmittedAt, &rawLines); err != nil {
			return nil, fmt.Errorf("list vendor offers for %s: scan row: %w", requestID, err)
		}
		offer.Lines, err = decodeLines(rawLines)
		if err != nil {
			return nil, fmt.Errorf("list vendor offers for %s: decode lines: %w", requestID, err)
		}
		offers = append(offers, &offer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vendor offers for %s: row iteration: %w", requestID, err)
	}
	return offers, nil
}

func (p *PostgresStore) CreateOrder(ctx context.Context, order *domain.Order) (err error) {
	defer obs.Time(ctx, "store.CreateOrder")(&err)

	lineRecords := make([]orderLineRecord, 0, len(order.Lines))
	for _, l := range order.Lines {
		lineRecords = append(lineRecords, orderLineRecord{
			RequestItemID: l.RequestItemID,
			OfferType:     string(l.OfferType),
			FinalPrice:    l.FinalPrice,
			FinalQuantity: l.FinalQuantity,
			FinalUnit:     string(l.FinalUnit),
		})
	}
	lines, err := json.Marshal(lineRecords)
	if err != nil {
		return fmt.Errorf("create order: encode lines: %w", err)
	}

	var delivery []byte
	if order.DeliveryAddress != nil {
		delivery, err = json.Marshal(order.DeliveryAddress)
		if err != nil {
			return fmt.Errorf("create order: encode delivery address: %w", err)
		}
	}

	query := `
	INSERT INTO orders (id, request_id, vendor_id, lines, total_amount, currency, delivery_address, notes, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err = p.DB.ExecContext(ctx, query,
		order.ID, order.RequestID, order.VendorID, lines,
		order.TotalAmount, order.Currency, delivery, order.Notes, order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create order: insert orders row: %w", err)
	}
	return nil
}

func encodeItems(items []domain.RequestItem) ([]byte, error) {
	records := make([]itemRecord, 0, len(items))
	for _, it := range items {
		packs := make([]packRecord, 0, len(it.SuggestedPacks))
		for _, sp := range it.SuggestedPacks {
			packs = append(packs, packRecord{Value: sp.Value, Unit: string(sp.Unit)})
		}
		records = append(records, itemRecord{
			ID:                it.ID,
			ProductName:       it.ProductName,
			NormalizedHint:    it.NormalizedHint,
			RequestedQuantity: it.RequestedQuantity,
			RequestedUnit:     string(it.RequestedUnit),
			FractionalAllowed: it.FractionalAllowed,
			Notes:             it.Notes,
			SuggestedPacks:    packs,
		})
	}
	return json.Marshal(records)
}

func decodeItems(raw []byte) ([]domain.RequestItem, error) {
	var records []itemRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}

	items := make([]domain.RequestItem, 0, len(records))
	for _, r := range records {
		packs := make([]domain.SuggestedPack, 0, len(r.SuggestedPacks))
		for _, sp := range r.SuggestedPacks {
			packs = append(packs, domain.SuggestedPack{Value: sp.Value, Unit: domain.Unit(sp.Unit)})
		}
		items = append(items, domain.RequestItem{
			ID:                r.ID,
			ProductName:       r.ProductName,
			NormalizedHint:    r.NormalizedHint,
			RequestedQuantity: r.RequestedQuantity,
			RequestedUnit:     domain.Unit(r.RequestedUnit),
			FractionalAllowed: r.FractionalAllowed,
			Notes:             r.Notes,
			SuggestedPacks:    packs,
		})
	}
	return items, nil
}

func encodeLines(lines []domain.LineOffer) ([]byte, error) {
	records := make([]lineRecord, 0, len(lines))
	for _, line := range lines {
		switch l := line.(type) {
		case domain.ExactQuantityOffer:
			records = append(records, lineRecord{
				Type:            "exact",
				RequestItemID:   l.RequestItemID,
				CanFulfill:      l.CanFulfill,
				TotalPrice:      l.TotalPrice,
				Currency:        l.Currency,
				LeadTimeMinutes: l.LeadTimeMinutes,
				Notes:           l.Notes,
			})
		case domain.PackOffer:
			records = append(records, lineRecord{
				Type:             "pack",
				RequestItemID:    l.RequestItemID,
				PackValue:        l.PackValue,
				PackUnit:         string(l.PackUnit),
				PricePerPack:     l.PricePerPack,
				AvailablePacks:   l.AvailablePacks,
				AllowsFractional: l.AllowsFractional,
				SplitFeePercent:  l.SplitFeePercent,
				IncompatibleUnit: l.IncompatibleUnit,
				Currency:         l.Currency,
				LeadTimeMinutes:  l.LeadTimeMinutes,
				Notes:            l.Notes,
			})
		default:
			return nil, fmt.Errorf("unknown line offer type %T", line)
		}
	}
	return json.Marshal(records)
}

func decodeLines(raw []byte) ([]domain.LineOffer, error) {
	var records []lineRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}

	lines := make([]domain.LineOffer, 0, len(records))
	for _, r := range records {
		switch r.Type {
		case "exact":
			lines = append(lines, domain.ExactQuantityOffer{
				RequestItemID:   r.RequestItemID,
				CanFulfill:      r.CanFulfill,
				TotalPrice:      r.TotalPrice,
				Currency:        r.Currency,
				LeadTimeMinutes: r.LeadTimeMinutes,
				Notes:           r.Notes,
			})
		case "pack":
			lines = append(lines, domain.PackOffer{
				RequestItemID:    r.RequestItemID,
				PackValue:        r.PackValue,
				PackUnit:         domain.Unit(r.PackUnit),
				PricePerPack:     r.PricePerPack,
				AvailablePacks:   r.AvailablePacks,
				AllowsFractional: r.AllowsFractional,
				SplitFeePercent:  r.SplitFeePercent,
				IncompatibleUnit: r.IncompatibleUnit,
				Currency:         r.Currency,
				LeadTimeMinutes:  r.LeadTimeMinutes,
				Notes:            r.Notes,
			})
		default:
			return nil, fmt.Errorf("unknown line offer type %q", r.Type)
		}
	}
	return lines, nil
}
