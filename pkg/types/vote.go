package types

import "time"

// VoteType is the direction of a vote.
type VoteType string

// Vote directions.
const (
	VoteUp   VoteType = "up"
	VoteDown VoteType = "down"
)

// Valid reports whether t is a recognized direction.
func (t VoteType) Valid() bool {
	return t == VoteUp || t == VoteDown
}

// ParseVoteType accepts "up"/"down" and the long forms "upvote"/"downvote".
func ParseVoteType(s string) (VoteType, error) {
	switch s {
	case "up", "upvote":
		return VoteUp, nil
	case "down", "downvote":
		return VoteDown, nil
	default:
		return "", ErrInvalidVoteType
	}
}

// Vote is one user's vote on one code. At most one exists per
// (Username, CodeID).
type Vote struct {
	VoteID    string    `json:"vote_id"`
	CodeID    string    `json:"code_id"`
	Username  string    `json:"username"`
	VoteType  VoteType  `json:"vote_type"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VoteState is the ledger state of a (user, code) pair.
type VoteState string

// Ledger states.
const (
	NoVote    VoteState = "none"
	Upvoted   VoteState = "upvoted"
	Downvoted VoteState = "downvoted"
)

// StateOf returns the ledger state represented by v (nil means NoVote).
func StateOf(v *Vote) VoteState {
	if v == nil {
		return NoVote
	}
	if v.VoteType == VoteUp {
		return Upvoted
	}
	return Downvoted
}

// VoteAction is the write the ledger applies for one transition.
type VoteAction string

// Ledger actions.
const (
	VoteCreate VoteAction = "create" // NoVote -> Upvoted/Downvoted: insert a row.
	VoteClear  VoteAction = "clear"  // same direction again: delete the row.
	VoteFlip   VoteAction = "flip"   // opposite direction: update type and timestamp in place.
)

// NextVote returns the action for requesting direction on current state, and
// the resulting state.
func NextVote(current VoteState, requested VoteType) (VoteAction, VoteState, error) {
	if !requested.Valid() {
		return "", current, ErrInvalidVoteType
	}
	target := Upvoted
	if requested == VoteDown {
		target = Downvoted
	}
	switch current {
	case NoVote:
		return VoteCreate, target, nil
	case target:
		return VoteClear, NoVote, nil
	default:
		return VoteFlip, target, nil
	}
}

// NetScore returns #up - #down over votes.
func NetScore(votes []*Vote) int {
	score := 0
	for _, v := range votes {
		switch v.VoteType {
		case VoteUp:
			score++
		case VoteDown:
			score--
		}
	}
	return score
}
