package content

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/restroom/internal/auth"
	"github.com/mesh-intelligence/restroom/internal/sqlite"
	"github.com/mesh-intelligence/restroom/pkg/types"
)

type fixture struct {
	store types.Store
	svc   *Service
	sess  *auth.Session
}

func tickingClock() func() time.Time {
	var mu sync.Mutex
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	store := sqlite.NewBackend(sqlite.WithClock(tickingClock()))
	require.NoError(t, store.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { store.Detach() })

	_, _, err := store.UpsertFacility(context.Background(), &types.Facility{PlaceID: "place", Latitude: 1, Longitude: 1})
	require.NoError(t, err)

	return &fixture{
		store: store,
		svc:   NewService(store, opts, zerolog.Nop()),
		sess:  auth.NewSession("alice"),
	}
}

func (fx *fixture) vote(t *testing.T, codeID, username string, vt types.VoteType) {
	t.Helper()
	_, err := fx.store.MutateVote(context.Background(), codeID, username,
		func(current *types.Vote) (types.VoteAction, types.VoteType, error) {
			action, _, err := types.NextVote(types.StateOf(current), vt)
			return action, vt, err
		})
	require.NoError(t, err)
}

func TestAuthGate_StoreUnchanged(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, Options{})
	before, err := fx.store.Counts(ctx)
	require.NoError(t, err)

	for _, sess := range []*auth.Session{nil, {}} {
		_, err = fx.svc.AddComment(ctx, sess, "place", "hi")
		assert.ErrorIs(t, err, types.ErrNotAuthenticated)
		_, err = fx.svc.AddCode(ctx, sess, "place", "1234")
		assert.ErrorIs(t, err, types.ErrNotAuthenticated)
		_, err = fx.svc.SetNote(ctx, sess, "place", "n")
		assert.ErrorIs(t, err, types.ErrNotAuthenticated)
		_, err = fx.svc.GetNote(ctx, sess, "place")
		assert.ErrorIs(t, err, types.ErrNotAuthenticated)
	}

	// Authentication is checked before the facility lookup.
	_, err = fx.svc.AddComment(ctx, &auth.Session{}, "missing", "hi")
	assert.ErrorIs(t, err, types.ErrNotAuthenticated)

	after, err := fx.store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, Options{})

	c, err := fx.svc.AddComment(ctx, fx.sess, "place", "clean and open")
	require.NoError(t, err)
	assert.Equal(t, "alice", c.Username)
	assert.Equal(t, "clean and open", c.Content)
	assert.NotEmpty(t, c.CommentID)

	_, err = fx.svc.AddComment(ctx, fx.sess, "missing", "x")
	assert.ErrorIs(t, err, types.ErrFacilityNotFound)
}

func TestAddComment_EmptyText(t *testing.T) {
	ctx := context.Background()

	lenient := newFixture(t, Options{})
	_, err := lenient.svc.AddComment(ctx, lenient.sess, "place", "")
	assert.NoError(t, err, "empty text is accepted by default")

	strict := newFixture(t, Options{RejectEmpty: true})
	_, err = strict.svc.AddComment(ctx, strict.sess, "place", "   ")
	assert.ErrorIs(t, err, types.ErrInvalidContent)
	_, err = strict.svc.AddCode(ctx, strict.sess, "place", "")
	assert.ErrorIs(t, err, types.ErrInvalidContent)
}

func TestAddComment_StripHTML(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, Options{StripHTML: true, RejectEmpty: true})

	c, err := fx.svc.AddComment(ctx, fx.sess, "place", `<script>alert(1)</script><b>Soap</b> & towels`)
	require.NoError(t, err)
	assert.Equal(t, "Soap & towels", c.Content)

	_, err = fx.svc.AddComment(ctx, fx.sess, "place", "<img src=x>")
	assert.ErrorIs(t, err, types.ErrInvalidContent)
}

func TestListComments_NewestFirst(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, Options{})

	for _, text := range []string{"one", "two", "three"} {
		_, err := fx.svc.AddComment(ctx, fx.sess, "place", text)
		require.NoError(t, err)
	}
	list, err := fx.svc.ListComments(ctx, "place")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "three", list[0].Content)
	assert.Equal(t, "two", list[1].Content)
	assert.Equal(t, "one", list[2].Content)

	_, err = fx.svc.ListComments(ctx, "missing")
	assert.ErrorIs(t, err, types.ErrFacilityNotFound)
}

func TestRankedCodes_Example(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, Options{})

	a, err := fx.svc.AddCode(ctx, fx.sess, "place", "A")
	require.NoError(t, err)
	b, err := fx.svc.AddCode(ctx, fx.sess, "place", "B")
	require.NoError(t, err)
	c, err := fx.svc.AddCode(ctx, fx.sess, "place", "C")
	require.NoError(t, err)

	fx.vote(t, a.CodeID, "u1", types.VoteUp)
	fx.vote(t, a.CodeID, "u2", types.VoteUp)
	fx.vote(t, b.CodeID, "u1", types.VoteUp)
	fx.vote(t, b.CodeID, "u2", types.VoteUp)
	fx.vote(t, c.CodeID, "u1", types.VoteUp)

	ranked, err := fx.svc.RankedCodes(ctx, "place")
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, "B", ranked[0].Code.Text)
	assert.Equal(t, "A", ranked[1].Code.Text)
	assert.Equal(t, "C", ranked[2].Code.Text)
	assert.Equal(t, []int{2, 2, 1}, []int{ranked[0].NetScore, ranked[1].NetScore, ranked[2].NetScore})

	// Scores are live: a later vote reorders immediately.
	fx.vote(t, c.CodeID, "u2", types.VoteUp)
	fx.vote(t, c.CodeID, "u3", types.VoteUp)
	top, ok, err := fx.svc.TopCode(ctx, "place")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "C", top.Code.Text)
	assert.Equal(t, 3, top.NetScore)
}

func TestTopCode_None(t *testing.T) {
	fx := newFixture(t, Options{})
	top, ok, err := fx.svc.TopCode(context.Background(), "place")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, top)

	_, _, err = fx.svc.TopCode(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrFacilityNotFound)
}

func TestNotes_PrivatePerUser(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, Options{})

	_, err := fx.svc.SetNote(ctx, fx.sess, "place", "bring coins")
	require.NoError(t, err)
	_, err = fx.svc.SetNote(ctx, fx.sess, "place", "bring quarters")
	require.NoError(t, err)

	n, err := fx.svc.GetNote(ctx, fx.sess, "place")
	require.NoError(t, err)
	assert.Equal(t, "bring quarters", n.Content)

	_, err = fx.svc.GetNote(ctx, auth.NewSession("bob"), "place")
	assert.ErrorIs(t, err, types.ErrNoteNotFound)
}
