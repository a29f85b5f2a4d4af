// Package sqlite provides the public API for the SQLite restroom store.
// This package exposes the factory function for creating SQLite backends
// while keeping implementation details internal.
package sqlite

import (
	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/restroom/internal/sqlite"
	"github.com/mesh-intelligence/restroom/pkg/types"
)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	store := sqlite.NewBackend(zerolog.Nop())
//	err := store.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".restroom",
//	})
//	defer store.Detach()
func NewBackend(log zerolog.Logger) types.Store {
	return sqlite.NewBackend(sqlite.WithLogger(log))
}
