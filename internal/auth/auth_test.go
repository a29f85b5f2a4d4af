package auth

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mesh-intelligence/restroom/internal/sqlite"
	"github.com/mesh-intelligence/restroom/pkg/types"
)

func newTestService(t *testing.T) (*Service, types.Store) {
	t.Helper()
	store := sqlite.NewBackend()
	require.NoError(t, store.Attach(types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}))
	t.Cleanup(func() { store.Detach() })
	return NewService(store, BcryptHasher{Cost: bcrypt.MinCost}, zerolog.Nop()), store
}

func TestSignUp_LogsInAndPersists(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	sess := &Session{}

	require.NoError(t, svc.SignUp(ctx, sess, "alice", "pw"))
	name, ok := sess.User()
	assert.True(t, ok)
	assert.Equal(t, "alice", name)

	u, err := store.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.NotEqual(t, "pw", u.PasswordHash, "password must not be stored in plaintext")
}

func TestSignUp_Duplicate(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	require.NoError(t, svc.SignUp(ctx, &Session{}, "alice", "pw"))
	before, err := store.GetUser(ctx, "alice")
	require.NoError(t, err)

	other := &Session{}
	err = svc.SignUp(ctx, other, "alice", "different")
	assert.ErrorIs(t, err, types.ErrDuplicateUsername)
	_, ok := other.User()
	assert.False(t, ok, "failed sign up must not log in")

	after, err := store.GetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
}

func TestSignUp_DuplicateLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)

	require.NoError(t, svc.SignUp(ctx, &Session{}, "alice", "pw"))
	before, err := store.Counts(ctx)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.SignUp(ctx, &Session{}, "alice", "different"), types.ErrDuplicateUsername)

	after, err := store.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, after[types.UsersTable])
}

func TestSignUp_LongPasswordRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	long := strings.Repeat("correct horse battery staple ", 3)
	require.Greater(t, len(long), 72)

	require.NoError(t, svc.SignUp(ctx, &Session{}, "bob", long))

	sess := &Session{}
	require.NoError(t, svc.LogIn(ctx, sess, "bob", long))
	name, ok := sess.User()
	assert.True(t, ok)
	assert.Equal(t, "bob", name)

	// Passwords that only differ past byte 72 are still distinct.
	assert.ErrorIs(t, svc.LogIn(ctx, &Session{}, "bob", long+"!"), types.ErrWrongPassword)
	assert.ErrorIs(t, svc.LogIn(ctx, &Session{}, "bob", long[:72]), types.ErrWrongPassword)
}

func TestSignUp_EmptyUsername(t *testing.T) {
	svc, _ := newTestService(t)
	assert.ErrorIs(t, svc.SignUp(context.Background(), &Session{}, "", "pw"), types.ErrInvalidUsername)
}

func TestSignUp_EmptyPasswordAllowed(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	require.NoError(t, svc.SignUp(ctx, &Session{}, "bob", ""))
	sess := &Session{}
	require.NoError(t, svc.LogIn(ctx, sess, "bob", ""))
	assert.ErrorIs(t, svc.LogIn(ctx, &Session{}, "bob", "x"), types.ErrWrongPassword)
}

func TestLogIn(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	require.NoError(t, svc.SignUp(ctx, &Session{}, "alice", "secret"))

	tests := []struct {
		name     string
		username string
		password string
		want     error
	}{
		{"correct password", "alice", "secret", nil},
		{"wrong password", "alice", "Secret", types.ErrWrongPassword},
		{"unknown user", "mallory", "secret", types.ErrUnknownUsername},
		{"case-sensitive username", "Alice", "secret", types.ErrUnknownUsername},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := &Session{}
			err := svc.LogIn(ctx, sess, tt.username, tt.password)
			name, ok := sess.User()
			if tt.want == nil {
				require.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, tt.username, name)
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, ok)
		})
	}
}

func TestLogIn_FailureKeepsExistingSession(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	sess := &Session{}
	require.NoError(t, svc.SignUp(ctx, sess, "alice", "pw"))

	assert.ErrorIs(t, svc.LogIn(ctx, sess, "alice", "nope"), types.ErrWrongPassword)
	name, _ := sess.User()
	assert.Equal(t, "alice", name)
}

func TestLogOut_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	sess := &Session{}
	require.NoError(t, svc.SignUp(ctx, sess, "alice", "pw"))

	svc.LogOut(sess)
	_, ok := sess.User()
	assert.False(t, ok)
	svc.LogOut(sess)
	_, ok = sess.User()
	assert.False(t, ok)

	_, err := Require(sess)
	assert.ErrorIs(t, err, types.ErrNotAuthenticated)
}

func TestSessions_AreIndependent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	a, b := &Session{}, &Session{}

	require.NoError(t, svc.SignUp(ctx, a, "alice", "pw"))
	require.NoError(t, svc.SignUp(ctx, b, "bob", "pw"))
	svc.LogOut(a)

	_, ok := a.User()
	assert.False(t, ok)
	name, ok := b.User()
	assert.True(t, ok)
	assert.Equal(t, "bob", name)
}

func TestSignUp_ConcurrentSameName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.SignUp(ctx, &Session{}, "dup", "pw")
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
		} else {
			assert.ErrorIs(t, err, types.ErrDuplicateUsername)
		}
	}
	assert.Equal(t, 1, ok)
}

func TestHashers(t *testing.T) {
	t.Run("sha256 is deterministic lowercase hex", func(t *testing.T) {
		h := SHA256Hasher{}
		got, err := h.Hash("password")
		require.NoError(t, err)
		assert.Equal(t, "5e884898da28047151d0e56f8dc6292773603d0d6aabbdd62a11ef721d1542d8", got)
		assert.Equal(t, strings.ToLower(got), got)
		assert.True(t, h.Verify(got, "password"))
		assert.False(t, h.Verify(got, "Password"))
	})

	t.Run("bcrypt salts and verifies", func(t *testing.T) {
		h := BcryptHasher{Cost: bcrypt.MinCost}
		a, err := h.Hash("pw")
		require.NoError(t, err)
		b, err := h.Hash("pw")
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
		assert.True(t, h.Verify(a, "pw"))
		assert.False(t, h.Verify(a, "other"))
	})

	t.Run("bcrypt accepts legacy digests", func(t *testing.T) {
		legacy, _ := SHA256Hasher{}.Hash("old")
		h := BcryptHasher{Cost: bcrypt.MinCost}
		assert.True(t, h.Verify(legacy, "old"))
		assert.False(t, h.Verify(legacy, "new"))
	})
}

func TestNewHasher(t *testing.T) {
	h, err := NewHasher("")
	require.NoError(t, err)
	assert.IsType(t, BcryptHasher{}, h)

	h, err = NewHasher(HasherSHA256)
	require.NoError(t, err)
	assert.IsType(t, SHA256Hasher{}, h)

	_, err = NewHasher("md5")
	assert.ErrorIs(t, err, ErrHasherUnknown)
}
