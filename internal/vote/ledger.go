// Package vote applies up/down votes on access codes. Each (user, code) pair
// moves between NoVote, Upvoted and Downvoted; the net score is always
// derived from the stored votes.
package vote

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/restroom/internal/auth"
	"github.com/mesh-intelligence/restroom/pkg/types"
)

// Result describes the outcome of CastVote.
type Result struct {
	Action   types.VoteAction `json:"action"`
	State    types.VoteState  `json:"state"`
	NetScore int              `json:"net_score"`
}

// Ledger casts votes through a Store.
type Ledger struct {
	store types.Store
	log   zerolog.Logger
}

// NewLedger returns a ledger over store.
func NewLedger(store types.Store, log zerolog.Logger) *Ledger {
	return &Ledger{store: store, log: log}
}

// CastVote applies requested for the session user on codeID. Voting the
// same direction twice clears the vote; voting the opposite direction flips
// it in place.
func (l *Ledger) CastVote(ctx context.Context, sess *auth.Session, codeID string, requested types.VoteType) (*Result, error) {
	username, err := auth.Require(sess)
	if err != nil {
		return nil, err
	}
	if !requested.Valid() {
		return nil, types.ErrInvalidVoteType
	}

	var next types.VoteState
	change, err := l.store.MutateVote(ctx, codeID, username, func(current *types.Vote) (types.VoteAction, types.VoteType, error) {
		action, state, err := types.NextVote(types.StateOf(current), requested)
		next = state
		return action, requested, err
	})
	if err != nil {
		return nil, err
	}

	l.log.Debug().
		Str("username", username).
		Str("code_id", codeID).
		Str("action", string(change.Action)).
		Int("net_score", change.NetScore).
		Msg("vote cast")
	return &Result{Action: change.Action, State: next, NetScore: change.NetScore}, nil
}

// NetScore returns the live score of codeID.
func (l *Ledger) NetScore(ctx context.Context, codeID string) (int, error) {
	return l.store.NetScore(ctx, codeID)
}
