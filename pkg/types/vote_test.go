package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextVote(t *testing.T) {
	tests := []struct {
		name       string
		current    VoteState
		requested  VoteType
		wantAction VoteAction
		wantState  VoteState
	}{
		{"none to up creates", NoVote, VoteUp, VoteCreate, Upvoted},
		{"none to down creates", NoVote, VoteDown, VoteCreate, Downvoted},
		{"up again clears", Upvoted, VoteUp, VoteClear, NoVote},
		{"down again clears", Downvoted, VoteDown, VoteClear, NoVote},
		{"up to down flips", Upvoted, VoteDown, VoteFlip, Downvoted},
		{"down to up flips", Downvoted, VoteUp, VoteFlip, Upvoted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			action, state, err := NextVote(tt.current, tt.requested)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantAction, action)
			assert.Equal(t, tt.wantState, state)
		})
	}
}

func TestNextVoteRejectsUnknownType(t *testing.T) {
	_, state, err := NextVote(Upvoted, VoteType("sideways"))
	assert.ErrorIs(t, err, ErrInvalidVoteType)
	assert.Equal(t, Upvoted, state, "state should not change on error")
}

func TestParseVoteType(t *testing.T) {
	for in, want := range map[string]VoteType{
		"up": VoteUp, "upvote": VoteUp, "down": VoteDown, "downvote": VoteDown,
	} {
		got, err := ParseVoteType(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseVoteType("UP")
	assert.ErrorIs(t, err, ErrInvalidVoteType)
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, NoVote, StateOf(nil))
	assert.Equal(t, Upvoted, StateOf(&Vote{VoteType: VoteUp}))
	assert.Equal(t, Downvoted, StateOf(&Vote{VoteType: VoteDown}))
}

func TestNetScore(t *testing.T) {
	votes := []*Vote{
		{Username: "a", VoteType: VoteUp},
		{Username: "b", VoteType: VoteUp},
		{Username: "c", VoteType: VoteDown},
	}
	assert.Equal(t, 1, NetScore(votes))
	assert.Equal(t, 0, NetScore(nil))
}
