package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mesh-intelligence/restroom/pkg/types"
)

// AddCode persists c and assigns CodeID (and CreatedAt when zero).
// On error c is left unchanged.
func (b *Backend) AddCode(ctx context.Context, c *types.Code) error {
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
			INSERT INTO codes (code_id, facility_id, username, code, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			id, c.FacilityID, c.Username, c.Text, formatTime(createdAt)); err != nil {
			return storageErr("inserting code", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	c.CodeID = id
	c.CreatedAt = createdAt.UTC()
	return nil
}

// GetCode returns the code for codeID or ErrCodeNotFound.
func (b *Backend) GetCode(ctx context.Context, codeID string) (*types.Code, error) {
	var c *types.Code
	err := b.read(ctx, func(tx *sql.Tx) error {
		var err error
		c, err = queryCode(ctx, tx, codeID)
		return err
	})
	return c, err
}

// ScoredCodes returns the codes of a facility in insertion order with the net
// score derived from the vote rows at query time.
func (b *Backend) ScoredCodes(ctx context.Context, facilityID string) ([]types.RankedCode, error) {
	var out []types.RankedCode
	err := b.read(ctx, func(tx *sql.Tx) error {
		if err := facilityIDExists(ctx, tx, facilityID); err != nil {
			return err
		}
		rows, err := tx.QueryContext(ctx, `
			SELECT c.code_id, c.facility_id, c.username, c.code, c.created_at,
				COALESCE(SUM(CASE v.vote_type WHEN 'up' THEN 1 WHEN 'down' THEN -1 ELSE 0 END), 0)
			FROM codes c
			LEFT JOIN votes v ON v.code_id = c.code_id
			WHERE c.facility_id = ?
			GROUP BY c.seq
			ORDER BY c.seq`, facilityID)
		if err != nil {
			return storageErr("querying codes", err)
		}
		defer rows.Close()
		for rows.Next() {
			var c types.Code
			var created string
			var score int
			if err := rows.Scan(&c.CodeID, &c.FacilityID, &c.Username, &c.Text, &created, &score); err != nil {
				return storageErr("scanning code", err)
			}
			if c.CreatedAt, err = parseTime(created); err != nil {
				return storageErr("parsing code created_at", err)
			}
			out = append(out, types.RankedCode{Code: &c, NetScore: score})
		}
		if err := rows.Err(); err != nil {
			return storageErr("iterating codes", err)
		}
		return nil
	})
	return out, err
}

func queryCode(ctx context.Context, tx *sql.Tx, codeID string) (*types.Code, error) {
	var c types.Code
	var created string
	err := tx.QueryRowContext(ctx, `
		SELECT code_id, facility_id, username, code, created_at
		FROM codes WHERE code_id = ?`, codeID).
		Scan(&c.CodeID, &c.FacilityID, &c.Username, &c.Text, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrCodeNotFound
	}
	if err != nil {
		return nil, storageErr("scanning code", err)
	}
	if c.CreatedAt, err = parseTime(created); err != nil {
		return nil, storageErr("parsing code created_at", err)
	}
	return &c, nil
}
