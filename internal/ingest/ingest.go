// Package ingest turns externally discovered places into facilities. Each
// place is upserted once by place id, so repeated or overlapping fetches
// never duplicate a facility.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/restroom/internal/geo"
	"github.com/mesh-intelligence/restroom/pkg/types"
)

// ErrStaleGeneration is returned by Apply when the same client has begun a
// newer fetch.
var ErrStaleGeneration = errors.New("ingest generation superseded")

// maxTrackedClients bounds how many clients' latest generations are kept.
const maxTrackedClients = 4096

// Place is one result from a place search.
type Place struct {
	ExternalID string   `json:"external_id,omitempty"`
	Name       *string  `json:"name,omitempty"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Address    *string  `json:"address,omitempty"`
	Rating     *float64 `json:"rating,omitempty"`
}

// PlaceID returns ExternalID when set, else a key derived from the name and
// a geohash of the coordinates.
func (p Place) PlaceID() string {
	if p.ExternalID != "" {
		return p.ExternalID
	}
	name := ""
	if p.Name != nil {
		name = *p.Name
	}
	return geo.PlaceKey(name, p.Latitude, p.Longitude)
}

// Facility converts p into the facility to upsert.
func (p Place) Facility() *types.Facility {
	return &types.Facility{
		PlaceID:   p.PlaceID(),
		Name:      p.Name,
		Latitude:  p.Latitude,
		Longitude: p.Longitude,
		Address:   p.Address,
		Rating:    p.Rating,
	}
}

// DecodePlaces reads a JSON array of places.
func DecodePlaces(r io.Reader) ([]Place, error) {
	var places []Place
	if err := json.NewDecoder(r).Decode(&places); err != nil {
		return nil, fmt.Errorf("%w: decoding places: %v", types.ErrInvalidData, err)
	}
	return places, nil
}

// Report counts what one Apply did.
type Report struct {
	Created  int `json:"created"`
	Existing int `json:"existing"`
	Skipped  int `json:"skipped"`
}

// Generation identifies one fetch of one client. Only the client's latest
// generation may apply; fetches of other clients never supersede it.
type Generation struct {
	Client string
	N      uint64
}

// Adapter feeds places into a Store.
type Adapter struct {
	store types.Store
	log   zerolog.Logger

	mu     sync.Mutex
	next   uint64
	latest *lru.Cache[string, uint64]
}

// NewAdapter returns an adapter over store.
func NewAdapter(store types.Store, log zerolog.Logger) *Adapter {
	// lru.New only fails for a non-positive size.
	latest, _ := lru.New[string, uint64](maxTrackedClients)
	return &Adapter{store: store, log: log, latest: latest}
}

// Begin starts a new fetch for client and supersedes the client's earlier
// ones.
func (a *Adapter) Begin(client string) Generation {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.next++
	a.latest.Add(client, a.next)
	return Generation{Client: client, N: a.next}
}

// isCurrent reports whether g is its client's latest fetch. A client evicted
// from the tracker has begun nothing since, so its generation still counts.
func (a *Adapter) isCurrent(g Generation) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	n, ok := a.latest.Peek(g.Client)
	return !ok || n == g.N
}

// Apply upserts places for generation g. It stops with ErrStaleGeneration
// as soon as the same client has begun a newer generation, and with the
// context error when ctx is done. Places with invalid coordinates are
// skipped. Upserts already applied stay applied; they are idempotent.
func (a *Adapter) Apply(ctx context.Context, g Generation, places []Place) (Report, error) {
	var rep Report
	for _, p := range places {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if !a.isCurrent(g) {
			a.log.Debug().Str("client", g.Client).Uint64("generation", g.N).Msg("dropping stale ingest results")
			return rep, ErrStaleGeneration
		}

		_, created, err := a.store.UpsertFacility(ctx, p.Facility())
		switch {
		case errors.Is(err, types.ErrInvalidCoordinate), errors.Is(err, types.ErrInvalidPlaceID):
			a.log.Warn().Err(err).Str("place_id", p.PlaceID()).Msg("skipping place")
			rep.Skipped++
			continue
		case err != nil:
			return rep, err
		}
		if created {
			rep.Created++
		} else {
			rep.Existing++
		}
	}
	a.log.Info().
		Str("client", g.Client).
		Uint64("generation", g.N).
		Int("created", rep.Created).
		Int("existing", rep.Existing).
		Int("skipped", rep.Skipped).
		Msg("ingest applied")
	return rep, nil
}

// Ingest runs a single fetch for client: Begin followed by Apply.
func (a *Adapter) Ingest(ctx context.Context, client string, places []Place) (Report, error) {
	return a.Apply(ctx, a.Begin(client), places)
}
