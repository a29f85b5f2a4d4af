package types

import (
	"context"
	"errors"
)

// Store is the facility knowledge store. Every mutation goes through a
// single serialized write path; readers observe a consistent snapshot.
type Store interface {
	// Attach connects the Store to the backend described by config.
	// Creates the DataDir if it does not exist. Returns ErrAlreadyAttached if
	// called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, operations return ErrStoreDetached.
	Detach() error

	// CreateUser persists a new user. Returns ErrDuplicateUsername if the
	// username is taken; the store is left unchanged in that case.
	CreateUser(ctx context.Context, u *User) error

	// GetUser returns the user with the exact (case-sensitive) username.
	// Returns ErrUnknownUsername if none exists.
	GetUser(ctx context.Context, username string) (*User, error)

	// UpsertFacility inserts f if its PlaceID is unknown and returns it with
	// created set. If the PlaceID is known the stored facility is returned
	// unchanged; fields of f are ignored.
	UpsertFacility(ctx context.Context, f *Facility) (*Facility, bool, error)

	// GetFacility returns the facility for placeID or ErrFacilityNotFound.
	GetFacility(ctx context.Context, placeID string) (*Facility, error)

	// GetFacilityByID returns the facility for its store id or ErrFacilityNotFound.
	GetFacilityByID(ctx context.Context, facilityID string) (*Facility, error)

	// Facilities returns a snapshot of every facility in insertion order.
	Facilities(ctx context.Context) ([]*Facility, error)

	// AddComment persists c, assigning its id. Returns ErrFacilityNotFound if
	// c.FacilityID does not reference a facility.
	AddComment(ctx context.Context, c *Comment) error

	// Comments returns the comments of a facility in insertion order.
	Comments(ctx context.Context, facilityID string) ([]*Comment, error)

	// AddCode persists c, assigning its id. Returns ErrFacilityNotFound if
	// c.FacilityID does not reference a facility.
	AddCode(ctx context.Context, c *Code) error

	// GetCode returns the code for codeID or ErrCodeNotFound.
	GetCode(ctx context.Context, codeID string) (*Code, error)

	// ScoredCodes returns the codes of a facility in insertion order, each
	// paired with its net score computed from the current vote rows.
	ScoredCodes(ctx context.Context, facilityID string) ([]RankedCode, error)

	// MutateVote runs fn with the caller's current vote on codeID (nil when
	// none) and applies the returned action, all inside one write
	// transaction. Returns ErrCodeNotFound if the code does not exist.
	MutateVote(ctx context.Context, codeID, username string, fn VoteMutator) (*VoteChange, error)

	// Votes returns the vote rows of a code in insertion order.
	Votes(ctx context.Context, codeID string) ([]*Vote, error)

	// NetScore returns #up - #down over the current vote rows of codeID.
	NetScore(ctx context.Context, codeID string) (int, error)

	// SetNote creates or replaces the private note of username on a facility.
	SetNote(ctx context.Context, n *Note) error

	// GetNote returns the private note or ErrNoteNotFound.
	GetNote(ctx context.Context, facilityID, username string) (*Note, error)

	// Counts returns the number of rows per table name.
	Counts(ctx context.Context) (map[string]int, error)

	// Export writes every table as a JSONL file into dir.
	Export(ctx context.Context, dir string) error

	// Import loads JSONL files from dir. Existing rows win over imported
	// rows with the same unique keys; malformed lines are skipped.
	Import(ctx context.Context, dir string) error
}

// VoteMutator decides the action to take given the current vote (nil when
// the user has not voted on the code) and the direction to store for
// VoteCreate and VoteFlip.
type VoteMutator func(current *Vote) (VoteAction, VoteType, error)

// VoteChange reports the action applied by MutateVote and the vote row as it
// stands afterwards (nil when cleared).
type VoteChange struct {
	Action   VoteAction
	Vote     *Vote
	NetScore int
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrTableNotFound   = errors.New("table not found")
)

// Domain errors. Authentication errors are surfaced to callers verbatim.
var (
	ErrDuplicateUsername = errors.New("username already taken")
	ErrUnknownUsername   = errors.New("unknown username")
	ErrWrongPassword     = errors.New("wrong password")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrFacilityNotFound  = errors.New("facility not found")
	ErrCodeNotFound      = errors.New("code not found")
	ErrNoteNotFound      = errors.New("note not found")
	ErrStorageFailure    = errors.New("storage failure")
)

// Validation errors.
var (
	ErrInvalidUsername   = errors.New("username must not be empty")
	ErrInvalidPlaceID    = errors.New("place id must not be empty")
	ErrInvalidCoordinate = errors.New("coordinate out of range")
	ErrInvalidVoteType   = errors.New("invalid vote type")
	ErrInvalidContent    = errors.New("content must not be empty")
	ErrInvalidData       = errors.New("invalid entity data")
)
