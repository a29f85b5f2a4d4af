package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/restroom/pkg/types"
)

// MutateVote reads the caller's vote on codeID, asks fn what to do, and
// applies it in the same transaction under the write lock. Concurrent calls
// for the same (user, code) are therefore serialized and never lose updates.
func (b *Backend) MutateVote(ctx context.Context, codeID, username string, fn types.VoteMutator) (*types.VoteChange, error) {
	if username == "" {
		return nil, types.ErrInvalidUsername
	}
	var change *types.VoteChange
	err := b.write(ctx, func(tx *sql.Tx) error {
		if _, err := queryCode(ctx, tx, codeID); err != nil {
			return err
		}
		current, err := queryVote(ctx, tx, codeID, username)
		if err != nil {
			return err
		}

		action, voteType, err := fn(current)
		if err != nil {
			return err
		}

		now := b.stamp()
		var after *types.Vote
		switch action {
		case types.VoteCreate:
			if current != nil || !voteType.Valid() {
				return fmt.Errorf("%w: create with existing vote or type %q", types.ErrInvalidData, voteType)
			}
			after = &types.Vote{
				VoteID:    newUUID(),
				CodeID:    codeID,
				Username:  username,
				VoteType:  voteType,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO votes (vote_id, code_id, username, vote_type, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				after.VoteID, codeID, username, string(voteType), formatTime(now), formatTime(now)); err != nil {
				return storageErr("inserting vote", err)
			}
		case types.VoteClear:
			if current == nil {
				return fmt.Errorf("%w: clear without vote", types.ErrInvalidData)
			}
			if _, err := tx.ExecContext(ctx,
				"DELETE FROM votes WHERE vote_id = ?", current.VoteID); err != nil {
				return storageErr("deleting vote", err)
			}
		case types.VoteFlip:
			if current == nil || !voteType.Valid() {
				return fmt.Errorf("%w: flip without vote or type %q", types.ErrInvalidData, voteType)
			}
			// Type and timestamp change in one statement.
			if _, err := tx.ExecContext(ctx,
				"UPDATE votes SET vote_type = ?, updated_at = ? WHERE vote_id = ?",
				string(voteType), formatTime(now), current.VoteID); err != nil {
				return storageErr("updating vote", err)
			}
			flipped := *current
			flipped.VoteType = voteType
			flipped.UpdatedAt = now
			after = &flipped
		default:
			return fmt.Errorf("%w: unknown vote action %q", types.ErrInvalidData, action)
		}

		score, err := netScore(ctx, tx, codeID)
		if err != nil {
			return err
		}
		change = &types.VoteChange{Action: action, Vote: after, NetScore: score}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return change, nil
}

// Votes returns the vote rows of a code in insertion order.
func (b *Backend) Votes(ctx context.Context, codeID string) ([]*types.Vote, error) {
	var out []*types.Vote
	err := b.read(ctx, func(tx *sql.Tx) error {
		if _, err := queryCode(ctx, tx, codeID); err != nil {
			return err
		}
		rows, err := tx.QueryContext(ctx, `
			SELECT vote_id, code_id, username, vote_type, created_at, updated_at
			FROM votes WHERE code_id = ? ORDER BY seq`, codeID)
		if err != nil {
			return storageErr("querying votes", err)
		}
		defer rows.Close()
		for rows.Next() {
			v, err := scanVote(rows)
			if err != nil {
				return err
			}
			out = append(out, v)
		}
		if err := rows.Err(); err != nil {
			return storageErr("iterating votes", err)
		}
		return nil
	})
	return out, err
}

// NetScore returns #up - #down for codeID, computed from the vote rows.
func (b *Backend) NetScore(ctx context.Context, codeID string) (int, error) {
	var score int
	err := b.read(ctx, func(tx *sql.Tx) error {
		if _, err := queryCode(ctx, tx, codeID); err != nil {
			return err
		}
		var err error
		score, err = netScore(ctx, tx, codeID)
		return err
	})
	return score, err
}

func netScore(ctx context.Context, tx *sql.Tx, codeID string) (int, error) {
	var score int
	err := tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(CASE vote_type WHEN 'up' THEN 1 WHEN 'down' THEN -1 ELSE 0 END), 0)
		FROM votes WHERE code_id = ?`, codeID).Scan(&score)
	if err != nil {
		return 0, storageErr("computing net score", err)
	}
	return score, nil
}

// queryVote returns the vote of username on codeID, or nil when none exists.
func queryVote(ctx context.Context, tx *sql.Tx, codeID, username string) (*types.Vote, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT vote_id, code_id, username, vote_type, created_at, updated_at
		FROM votes WHERE code_id = ? AND username = ?`, codeID, username)
	v, err := scanVote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

func scanVote(row rowScanner) (*types.Vote, error) {
	var v types.Vote
	var voteType, created, updated string
	err := row.Scan(&v.VoteID, &v.CodeID, &v.Username, &voteType, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, storageErr("scanning vote", err)
	}
	v.VoteType = types.VoteType(voteType)
	if v.CreatedAt, err = parseTime(created); err != nil {
		return nil, storageErr("parsing vote created_at", err)
	}
	if v.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, storageErr("parsing vote updated_at", err)
	}
	return &v, nil
}
