package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// InitSchema creates the Postgres tables the service needs.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRequestsQuery := `
	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL,
		origin_lat DOUBLE PRECISION NOT NULL,
		origin_lng DOUBLE PRECISION NOT NULL,
		origin_address TEXT NOT NULL DEFAULT '',
		dest_lat DOUBLE PRECISION NOT NULL,
		dest_lng DOUBLE PRECISION NOT NULL,
		dest_address TEXT NOT NULL DEFAULT '',
		max_detour_km DOUBLE PRECISION NOT NULL,
		items JSONB NOT NULL,
		deadline TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL,
		accepted_vendor_id TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	);
	`

	createOffersQuery := `
	CREATE TABLE IF NOT EXISTS vendor_offers (
		request_id TEXT NOT NULL REFERENCES requests(id),
		vendor_id TEXT NOT NULL,
		submitted_at TIMESTAMPTZ NOT NULL,
		lines JSONB NOT NULL,
		PRIMARY KEY (request_id, vendor_id)
	);
	`

	createOrdersQuery := `
	CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL REFERENCES requests(id),
		vendor_id TEXT NOT NULL,
		lines JSONB NOT NULL,
		total_amount DOUBLE PRECISION NOT NULL,
		currency TEXT NOT NULL,
		delivery_address JSONB,
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	);
	`

	createVendorsQuery := `
	CREATE TABLE IF NOT EXISTS vendors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL,
		address TEXT NOT NULL DEFAULT '',
		endpoint TEXT NOT NULL DEFAULT '',
		active BOOLEAN NOT NULL DEFAULT TRUE,
		categories JSONB NOT NULL DEFAULT '[]'::jsonb
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lat DOUBLE PRECISION NOT NULL,
		lng DOUBLE PRECISION NOT NULL
	);
	`

	createStatusIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_requests_status_deadline
	ON requests(status, deadline);
	`

	statements := []string{
		createRequestsQuery,
		createOffersQuery,
		createOrdersQuery,
		createVendorsQuery,
		createGeocodeCacheQuery,
		createStatusIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type VendorSeed struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Lat        float64  `json:"lat"`
	Lng        float64  `json:"lng"`
	Address    string   `json:"address"`
	Endpoint   string   `json:"endpoint"`
	Active     bool     `json:"active"`
	Categories []string `json:"categories"`
}

// SeedVendorsFromJSON populates the vendors table from a JSON file.
func SeedVendorsFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed vendors: read %q: %w", jsonPath, err)
	}

	var data []VendorSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed vendors: parse json: %w", err)
	}

	rows := make([]VendorSeed, 0, len(data))
	for i, v := range data {
		if strings.TrimSpace(v.ID) == "" {
			return fmt.Errorf("seed vendors: empty id at index %d", i+1)
		}
		if strings.TrimSpace(v.Name) == "" {
			return fmt.Errorf("seed vendors: empty name at index %d", i+1)
		}
		rows = append(rows, v)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed vendors: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `
	INSERT INTO vendors (id, name, lat, lng, address, endpoint, active, categories)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
		lat = EXCLUDED.lat,
		lng = EXCLUDED.lng,
		address = EXCLUDED.address,
		endpoint = EXCLUDED.endpoint,
		active = EXCLUDED.active,
		categories = EXCLUDED.categories;
	`
	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("seed vendors: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, v := range rows {
		cats, err := json.Marshal(v.Categories)
		if err != nil {
			return fmt.Errorf("seed vendors: encode categories for %s: %w", v.ID, err)
		}
		if _, err := stmt.Exec(v.ID, v.Name, v.Lat, v.Lng, v.Address, v.Endpoint, v.Active, cats); err != nil {
			return fmt.Errorf("seed vendors: insert id=%s: %w", v.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed vendors: commit tx: %w", err)
	}

	return nil
}
