package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mesh-intelligence/restroom/pkg/types"
)

// SetNote creates or replaces the private note of n.Username on n.FacilityID.
func (b *Backend) SetNote(ctx context.Context, n *types.Note) error {
	if n == nil {
		return types.ErrInvalidData
	}
	if n.Username == "" {
		return types.ErrInvalidUsername
	}
	var now time.Time
	err := b.write(ctx, func(tx *sql.Tx) error {
		if err := facilityIDExists(ctx, tx, n.FacilityID); err != nil {
			return err
		}
		now = b.stamp()
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO notes (facility_id, username, content, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(facility_id, username) DO UPDATE SET
				content = excluded.content,
				updated_at = excluded.updated_at`,
			n.FacilityID, n.Username, n.Content, formatTime(now)); err != nil {
			return storageErr("upserting note", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	n.UpdatedAt = now
	return nil
}

// GetNote returns the private note of username on facilityID.
func (b *Backend) GetNote(ctx context.Context, facilityID, username string) (*types.Note, error) {
	var n *types.Note
	err := b.read(ctx, func(tx *sql.Tx) error {
		var found types.Note
		var updated string
		err := tx.QueryRowContext(ctx, `
			SELECT facility_id, username, content, updated_at
			FROM notes WHERE facility_id = ? AND username = ?`, facilityID, username).
			Scan(&found.FacilityID, &found.Username, &found.Content, &updated)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNoteNotFound
		}
		if err != nil {
			return storageErr("scanning note", err)
		}
		if found.UpdatedAt, err = parseTime(updated); err != nil {
			return storageErr("parsing note updated_at", err)
		}
		n = &found
		return nil
	})
	return n, err
}
