package sqlite

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/restroom/pkg/types"
)

func TestNewBackend_SatisfiesStore(t *testing.T) {
	store := NewBackend(zerolog.Nop())
	require.NoError(t, store.Attach(types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	}))
	defer store.Detach()

	counts, err := store.Counts(context.Background())
	require.NoError(t, err)
	assert.Len(t, counts, len(types.StandardTableNames))
}
