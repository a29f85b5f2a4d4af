// Package app wires the store and the services into one handle shared by the
// CLI and the HTTP server.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/restroom/internal/auth"
	"github.com/mesh-intelligence/restroom/internal/content"
	"github.com/mesh-intelligence/restroom/internal/geo"
	"github.com/mesh-intelligence/restroom/internal/ingest"
	"github.com/mesh-intelligence/restroom/internal/sqlite"
	"github.com/mesh-intelligence/restroom/internal/vote"
	"github.com/mesh-intelligence/restroom/pkg/types"
)

// Settings selects the store and tunes the services.
type Settings struct {
	Store   types.Config
	Hasher  string
	Content content.Options
}

// App owns an attached store and the services built over it.
type App struct {
	Store   types.Store
	Auth    *auth.Service
	Content *content.Service
	Votes   *vote.Ledger
	Ingest  *ingest.Adapter
	log     zerolog.Logger
}

// Open attaches the store described by s and builds the services. Call Close
// when done.
func Open(s Settings, log zerolog.Logger) (*App, error) {
	hasher, err := auth.NewHasher(s.Hasher)
	if err != nil {
		return nil, err
	}

	store := sqlite.NewBackend(sqlite.WithLogger(log.With().Str("component", "store").Logger()))
	if err := store.Attach(s.Store); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}

	return &App{
		Store:   store,
		Auth:    auth.NewService(store, hasher, log.With().Str("component", "auth").Logger()),
		Content: content.NewService(store, s.Content, log.With().Str("component", "content").Logger()),
		Votes:   vote.NewLedger(store, log.With().Str("component", "vote").Logger()),
		Ingest:  ingest.NewAdapter(store, log.With().Str("component", "ingest").Logger()),
		log:     log,
	}, nil
}

// Close detaches the store.
func (a *App) Close() error {
	return a.Store.Detach()
}

// NearestResult is a facility with its distance and best-ranked code.
type NearestResult struct {
	Facility *types.Facility   `json:"facility"`
	Meters   float64           `json:"meters"`
	TopCode  *types.RankedCode `json:"top_code,omitempty"`
}

// NearestWithTopCode finds the facility closest to at and its top code.
// ok is false when the store holds no facilities.
func (a *App) NearestWithTopCode(ctx context.Context, at types.Coordinate) (*NearestResult, bool, error) {
	if err := at.Validate(); err != nil {
		return nil, false, err
	}
	facilities, err := a.Store.Facilities(ctx)
	if err != nil {
		return nil, false, err
	}
	f, meters, ok := geo.Nearest(at, facilities)
	if !ok {
		return nil, false, nil
	}
	res := &NearestResult{Facility: f, Meters: meters}
	top, found, err := a.Content.TopCode(ctx, f.PlaceID)
	if err != nil {
		return nil, false, err
	}
	if found {
		res.TopCode = top
	}
	return res, true, nil
}
