package auth

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/restroom/pkg/types"
)

// Service creates accounts and binds sessions to them.
type Service struct {
	store  types.Store
	hasher Hasher
	log    zerolog.Logger
}

// NewService returns an auth service over store. A nil hasher selects bcrypt.
func NewService(store types.Store, hasher Hasher, log zerolog.Logger) *Service {
	if hasher == nil {
		hasher = BcryptHasher{}
	}
	return &Service{store: store, hasher: hasher, log: log}
}

// SignUp creates an account and logs sess in as it.
func (s *Service) SignUp(ctx context.Context, sess *Session, username, password string) error {
	if username == "" {
		return types.ErrInvalidUsername
	}

	// Cheap pre-check; CreateUser re-checks under the write lock.
	if _, err := s.store.GetUser(ctx, username); err == nil {
		return types.ErrDuplicateUsername
	} else if !errors.Is(err, types.ErrUnknownUsername) {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}
	if err := s.store.CreateUser(ctx, &types.User{Username: username, PasswordHash: hash}); err != nil {
		if !errors.Is(err, types.ErrDuplicateUsername) {
			s.log.Error().Err(err).Str("username", username).Msg("sign up failed")
		}
		return err
	}

	sess.set(username)
	s.log.Info().Str("username", username).Msg("user signed up")
	return nil
}

// LogIn checks the password and logs sess in. On failure the session is left
// as it was.
func (s *Service) LogIn(ctx context.Context, sess *Session, username, password string) error {
	u, err := s.store.GetUser(ctx, username)
	if err != nil {
		return err
	}
	if !s.hasher.Verify(u.PasswordHash, password) {
		s.log.Warn().Str("username", username).Msg("wrong password")
		return types.ErrWrongPassword
	}
	sess.set(username)
	s.log.Debug().Str("username", username).Msg("user logged in")
	return nil
}

// LogOut clears sess. Logging out a logged-out session is a no-op.
func (s *Service) LogOut(sess *Session) {
	if name, ok := sess.User(); ok {
		s.log.Debug().Str("username", name).Msg("user logged out")
	}
	sess.clear()
}

// Require returns the session user or ErrNotAuthenticated.
func Require(sess *Session) (string, error) {
	name, ok := sess.User()
	if !ok {
		return "", types.ErrNotAuthenticated
	}
	return name, nil
}
