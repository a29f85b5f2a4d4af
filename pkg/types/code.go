package types

import (
	"slices"
	"time"
)

// Code is a short community-submitted access code or tip attached to a
// facility. The text is immutable; its score is derived from votes.
type Code struct {
	CodeID     string    `json:"code_id"`
	FacilityID string    `json:"facility_id"`
	Username   string    `json:"username"`
	Text       string    `json:"code"`
	CreatedAt  time.Time `json:"created_at"`
}

// RankedCode pairs a code with its live net score.
type RankedCode struct {
	Code     *Code `json:"code"`
	NetScore int   `json:"net_score"`
}

// RankCodes orders codes by net score descending, then by timestamp
// descending. Input must be in insertion order; full ties resolve to the
// later insertion. The input slice is not modified.
func RankCodes(inInsertionOrder []RankedCode) []RankedCode {
	ranked := slices.Clone(inInsertionOrder)
	slices.Reverse(ranked)
	slices.SortStableFunc(ranked, func(a, b RankedCode) int {
		if a.NetScore != b.NetScore {
			if a.NetScore > b.NetScore {
				return -1
			}
			return 1
		}
		return b.Code.CreatedAt.Compare(a.Code.CreatedAt)
	})
	return ranked
}

// SortCommentsNewestFirst orders comments by timestamp descending. Input must
// be in insertion order; equal timestamps keep insertion order.
func SortCommentsNewestFirst(inInsertionOrder []*Comment) []*Comment {
	sorted := slices.Clone(inInsertionOrder)
	slices.SortStableFunc(sorted, func(a, b *Comment) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return sorted
}
