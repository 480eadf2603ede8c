package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"vendor-match-service/internal/domain"
	"vendor-match-service/internal/ports"
)

// PostgresVendorDirectory is the Postgres-backed VendorDirectory.
type PostgresVendorDirectory struct{ DB *sql.DB }

func NewPostgresVendorDirectory(db *sql.DB) *PostgresVendorDirectory {
	return &PostgresVendorDirectory{DB: db}
}

func (d *PostgresVendorDirectory) ListActive(ctx context.Context) ([]*domain.Vendor, error) {
	query := `
	SELECT id, name, lat, lng, address, endpoint, active, categories
	FROM vendors
	WHERE active
	ORDER BY id;
	`
	rows, err := d.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list vendors: query vendors table: %w", err)
	}
	defer rows.Close()

	vendors := make([]*domain.Vendor, 0, 32)
	for rows.Next() {
		v, err := scanVendor(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("list vendors: %w", err)
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list vendors: row iteration: %w", err)
	}
	return vendors, nil
}

func (d *PostgresVendorDirectory) GetVendor(ctx context.Context, id string) (*domain.Vendor, error) {
	query := `
	SELECT id, name, lat, lng, address, endpoint, active, categories
	FROM vendors
	WHERE id = $1;
	`
	v, err := scanVendor(d.DB.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get vendor %s: %w", id, ports.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get vendor %s: %w", id, err)
	}
	return v, nil
}

func scanVendor(scan func(dest ...any) error) (*domain.Vendor, error) {
	var (
		v       domain.Vendor
		loc     domain.Location
		rawCats []byte
	)
	if err := scan(&v.ID, &v.Name, &loc.Lat, &loc.Lng, &loc.Address, &v.Endpoint, &v.Active, &rawCats); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(rawCats, &v.Categories); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	v.Location = &loc
	return &v, nil
}
