package sqlite

import (
	"context"
	"database/sql"

	"github.com/mesh-intelligence/restroom/pkg/types"
)

// AddComment persists c and assigns CommentID (and CreatedAt when zero).
// On error c is left unchanged.
func (b *Backend) AddComment(ctx context.Context, c *types.Comment) error {
	if c == nil {
		return types.ErrInvalidData
	}
	id := newUUID()
	createdAt := c.CreatedAt
	err := b.write(ctx, func(tx *sql.Tx) error {
		if err := facilityIDExists(ctx, tx, c.FacilityID); err != nil {
			return err
		}
		if createdAt.IsZero() {
			createdAt = b.stamp()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO comments (comment_id, facility_id, username, content, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			id, c.FacilityID, c.Username, c.Content, formatTime(createdAt)); err != nil {
			return storageErr("inserting comment", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.CommentID = id
	c.CreatedAt = createdAt.UTC()
	return nil
}

// Comments returns the comments of a facility in insertion order.
func (b *Backend) Comments(ctx context.Context, facilityID string) ([]*types.Comment, error) {
	var out []*types.Comment
	err := b.read(ctx, func(tx *sql.Tx) error {
		if err := facilityIDExists(ctx, tx, facilityID); err != nil {
			return err
		}
		rows, err := tx.QueryContext(ctx, `
			SELECT comment_id, facility_id, username, content, created_at
			FROM comments WHERE facility_id = ? ORDER BY seq`, facilityID)
		if err != nil {
			return storageErr("querying comments", err)
		}
		defer rows.Close()
		for rows.Next() {
			var c types.Comment
			var created string
			if err := rows.Scan(&c.CommentID, &c.FacilityID, &c.Username, &c.Content, &created); err != nil {
				return storageErr("scanning comment", err)
			}
			if c.CreatedAt, err = parseTime(created); err != nil {
				return storageErr("parsing comment created_at", err)
			}
			out = append(out, &c)
		}
		if err := rows.Err(); err != nil {
			return storageErr("iterating comments", err)
		}
		return nil
	})
	return out, err
}
