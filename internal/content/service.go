// Package content records comments, access codes and private notes against
// facilities, and ranks codes by their live vote score.
package content

import (
	"context"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/restroom/internal/auth"
	"github.com/mesh-intelligence/restroom/pkg/types"
)

// Options tunes how submitted text is accepted.
type Options struct {
	// RejectEmpty refuses text that is empty after trimming and sanitizing.
	RejectEmpty bool
	// StripHTML removes markup from submitted text.
	StripHTML bool
}

// Service is the content surface over a Store.
type Service struct {
	store  types.Store
	opts   Options
	policy *bluemonday.Policy
	log    zerolog.Logger
}

// NewService returns a content service over store.
func NewService(store types.Store, opts Options, log zerolog.Logger) *Service {
	s := &Service{store: store, opts: opts, log: log}
	if opts.StripHTML {
		s.policy = bluemonday.StrictPolicy()
	}
	return s
}

// AddComment attaches a comment by the session user to the facility.
func (s *Service) AddComment(ctx context.Context, sess *auth.Session, placeID, text string) (*types.Comment, error) {
	username, f, text, err := s.prepare(ctx, sess, placeID, text)
	if err != nil {
		return nil, err
	}
	c := &types.Comment{FacilityID: f.FacilityID, Username: username, Content: text}
	if err := s.store.AddComment(ctx, c); err != nil {
		s.log.Error().Err(err).Str("place_id", placeID).Msg("add comment failed")
		return nil, err
	}
	s.log.Debug().Str("username", username).Str("place_id", placeID).Str("comment_id", c.CommentID).Msg("comment added")
	return c, nil
}

// AddCode attaches an access code by the session user to the facility.
func (s *Service) AddCode(ctx context.Context, sess *auth.Session, placeID, text string) (*types.Code, error) {
	username, f, text, err := s.prepare(ctx, sess, placeID, text)
	if err != nil {
		return nil, err
	}
	c := &types.Code{FacilityID: f.FacilityID, Username: username, Text: text}
	if err := s.store.AddCode(ctx, c); err != nil {
		s.log.Error().Err(err).Str("place_id", placeID).Msg("add code failed")
		return nil, err
	}
	s.log.Debug().Str("username", username).Str("place_id", placeID).Str("code_id", c.CodeID).Msg("code added")
	return c, nil
}

// ListComments returns the facility's comments newest first. Comments with
// equal timestamps keep insertion order.
func (s *Service) ListComments(ctx context.Context, placeID string) ([]*types.Comment, error) {
	f, err := s.store.GetFacility(ctx, placeID)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.Comments(ctx, f.FacilityID)
	if err != nil {
		return nil, err
	}
	return types.SortCommentsNewestFirst(comments), nil
}

// RankedCodes returns the facility's codes ordered by net score, then
// recency. Scores are recomputed from the vote rows on every call.
func (s *Service) RankedCodes(ctx context.Context, placeID string) ([]types.RankedCode, error) {
	f, err := s.store.GetFacility(ctx, placeID)
	if err != nil {
		return nil, err
	}
	return s.rankedCodesByID(ctx, f.FacilityID)
}

// TopCode returns the best-ranked code of the facility, if any.
func (s *Service) TopCode(ctx context.Context, placeID string) (*types.RankedCode, bool, error) {
	ranked, err := s.RankedCodes(ctx, placeID)
	if err != nil {
		return nil, false, err
	}
	if len(ranked) == 0 {
		return nil, false, nil
	}
	return &ranked[0], true, nil
}

func (s *Service) rankedCodesByID(ctx context.Context, facilityID string) ([]types.RankedCode, error) {
	scored, err := s.store.ScoredCodes(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	return types.RankCodes(scored), nil
}

// SetNote stores the session user's private note on the facility,
// replacing any previous one.
func (s *Service) SetNote(ctx context.Context, sess *auth.Session, placeID, text string) (*types.Note, error) {
	username, f, text, err := s.prepare(ctx, sess, placeID, text)
	if err != nil {
		return nil, err
	}
	n := &types.Note{FacilityID: f.FacilityID, Username: username, Content: text}
	if err := s.store.SetNote(ctx, n); err != nil {
		return nil, err
	}
	s.log.Debug().Str("username", username).Str("place_id", placeID).Msg("note saved")
	return n, nil
}

// GetNote returns the session user's note on the facility.
func (s *Service) GetNote(ctx context.Context, sess *auth.Session, placeID string) (*types.Note, error) {
	username, err := auth.Require(sess)
	if err != nil {
		return nil, err
	}
	f, err := s.store.GetFacility(ctx, placeID)
	if err != nil {
		return nil, err
	}
	return s.store.GetNote(ctx, f.FacilityID, username)
}

// prepare runs the shared preconditions of every write: authentication
// before any store access, facility lookup, then text cleanup.
func (s *Service) prepare(ctx context.Context, sess *auth.Session, placeID, text string) (string, *types.Facility, string, error) {
	username, err := auth.Require(sess)
	if err != nil {
		return "", nil, "", err
	}
	f, err := s.store.GetFacility(ctx, placeID)
	if err != nil {
		return "", nil, "", err
	}
	text, err = s.clean(text)
	if err != nil {
		return "", nil, "", err
	}
	return username, f, text, nil
}

func (s *Service) clean(text string) (string, error) {
	if s.policy != nil {
		// StrictPolicy escapes entities; stored text is plain, not HTML.
		text = html.UnescapeString(s.policy.Sanitize(text))
	}
	if s.opts.RejectEmpty && strings.TrimSpace(text) == "" {
		return "", types.ErrInvalidContent
	}
	return text, nil
}
