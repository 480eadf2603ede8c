package geocode

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"vendor-match-service/internal/domain"
	"vendor-match-service/internal/platform/obs"
)

// SQLCache is a SQL-backed cache mapping free-text addresses to coordinates.
type SQLCache struct {
	DB *sql.DB
}

func NewSQLCache(db *sql.DB) *SQLCache {
	return &SQLCache{DB: db}
}

// Get returns the cached coordinates for an address, if present.
func (s *SQLCache) Get(ctx context.Context, address string) (_ domain.Location, _ bool, err error) {
	defer obs.Time(ctx, "geocode.cache.Get")(&err)

	if s.DB == nil {
		return domain.Location{}, false, errors.New("geocode cache: db is nil")
	}

	address = strings.TrimSpace(address)
	if address == "" {
		return domain.Location{}, false, errors.New("geocode cache: empty address")
	}

	q := `
	SELECT lat, lng
	FROM geocode_cache
	WHERE address = $1;
	`

	var lat, lng float64
	err = s.DB.QueryRowContext(ctx, q, address).Scan(&lat, &lng)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Location{}, false, nil
	}
	if err != nil {
		return domain.Location{}, false, fmt.Errorf("get geocode cache: query geocode_cache table: %w", err)
	}

	return domain.Location{Lat: lat, Lng: lng, Address: address}, true, nil
}

// Put stores an address -> coordinate mapping, replacing any previous entry.
func (s *SQLCache) Put(ctx context.Context, address string, loc domain.Location) error {
	if s.DB == nil {
		return errors.New("geocode cache: db is nil")
	}

	address = strings.TrimSpace(address)
	if address == "" {
		return fmt.Errorf("insert geocode cache: empty address key")
	}

	q := `
	INSERT INTO geocode_cache (address, lat, lng)
	VALUES ($1, $2, $3)
	ON CONFLICT (address) DO UPDATE
	SET lat = EXCLUDED.lat,
		lng = EXCLUDED.lng;
	`

	if _, err := s.DB.ExecContext(ctx, q, address, loc.Lat, loc.Lng); err != nil {
		return fmt.Errorf("insert geocode cache coord=%q: %w", address, err)
	}
	return nil
}
