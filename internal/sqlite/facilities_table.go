package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mesh-intelligence/restroom/pkg/types"
)

const facilityColumns = "facility_id, place_id, name, latitude, longitude, address, rating, created_at"

// UpsertFacility inserts f when its PlaceID is unknown. A known PlaceID
// returns the stored facility untouched: the first sighting wins.
func (b *Backend) UpsertFacility(ctx context.Context, f *types.Facility) (*types.Facility, bool, error) {
	if f == nil {
		return nil, false, types.ErrInvalidData
	}
	if f.PlaceID == "" {
		return nil, false, types.ErrInvalidPlaceID
	}
	if err := f.Coordinate().Validate(); err != nil {
		return nil, false, err
	}

	var stored *types.Facility
	var created bool
	err := b.write(ctx, func(tx *sql.Tx) error {
		if cached, ok := b.cache.get(f.PlaceID); ok {
			stored = cached
			return nil
		}

		createdAt := b.stamp()
		res, err := tx.ExecContext(ctx, `
			INSERT INTO facilities (`+facilityColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(place_id) DO NOTHING`,
			newUUID(), f.PlaceID, nullString(f.Name), f.Latitude, f.Longitude,
			nullString(f.Address), nullFloat(f.Rating),
			formatTime(createdAt))
		if err != nil {
			return storageErr("inserting facility", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return storageErr("inserting facility", err)
		}
		created = n == 1

		stored, err = queryFacility(ctx, tx, "place_id", f.PlaceID)
		return err
	})
	if err != nil {
		return nil, false, err
	}

	// Populated after commit so a rolled-back insert never reaches the cache.
	b.mu.RLock()
	b.cache.add(stored)
	b.mu.RUnlock()

	if created {
		b.log.Debug().Str("place_id", stored.PlaceID).Str("facility_id", stored.FacilityID).Msg("facility created")
	}
	return stored, created, nil
}

// GetFacility returns the facility for placeID.
func (b *Backend) GetFacility(ctx context.Context, placeID string) (*types.Facility, error) {
	var f *types.Facility
	err := b.read(ctx, func(tx *sql.Tx) error {
		if cached, ok := b.cache.get(placeID); ok {
			f = cached
			return nil
		}
		var err error
		f, err = queryFacility(ctx, tx, "place_id", placeID)
		if err == nil {
			b.cache.add(f)
		}
		return err
	})
	return f, err
}

// GetFacilityByID returns the facility for its store id.
func (b *Backend) GetFacilityByID(ctx context.Context, facilityID string) (*types.Facility, error) {
	var f *types.Facility
	err := b.read(ctx, func(tx *sql.Tx) error {
		var err error
		f, err = queryFacility(ctx, tx, "facility_id", facilityID)
		return err
	})
	return f, err
}

// Facilities returns every facility in insertion order.
func (b *Backend) Facilities(ctx context.Context) ([]*types.Facility, error) {
	var out []*types.Facility
	err := b.read(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, "SELECT "+facilityColumns+" FROM facilities ORDER BY seq")
		if err != nil {
			return storageErr("querying facilities", err)
		}
		defer rows.Close()
		for rows.Next() {
			f, err := scanFacility(rows)
			if err != nil {
				return err
			}
			out = append(out, f)
		}
		if err := rows.Err(); err != nil {
			return storageErr("iterating facilities", err)
		}
		return nil
	})
	return out, err
}

// queryFacility loads one facility by a unique column (place_id or facility_id).
func queryFacility(ctx context.Context, tx *sql.Tx, column, value string) (*types.Facility, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+facilityColumns+" FROM facilities WHERE "+column+" = ?", value)
	f, err := scanFacility(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrFacilityNotFound
	}
	return f, err
}

// facilityIDExists reports ErrFacilityNotFound when facilityID is unknown.
func facilityIDExists(ctx context.Context, tx *sql.Tx, facilityID string) error {
	var exists int
	err := tx.QueryRowContext(ctx,
		"SELECT 1 FROM facilities WHERE facility_id = ?", facilityID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ErrFacilityNotFound
	}
	if err != nil {
		return storageErr("checking facility", err)
	}
	return nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFacility(row rowScanner) (*types.Facility, error) {
	var f types.Facility
	var name, address sql.NullString
	var rating sql.NullFloat64
	var created string
	err := row.Scan(&f.FacilityID, &f.PlaceID, &name, &f.Latitude, &f.Longitude, &address, &rating, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, storageErr("scanning facility", err)
	}
	if name.Valid {
		f.Name = &name.String
	}
	if address.Valid {
		f.Address = &address.String
	}
	if rating.Valid {
		f.Rating = &rating.Float64
	}
	if f.CreatedAt, err = parseTime(created); err != nil {
		return nil, storageErr("parsing facility created_at", err)
	}
	return &f, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
