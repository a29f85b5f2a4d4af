package types

import "errors"

// Config holds backend selection and parameters for Store.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// FacilityCacheSize bounds the placeId lookup cache. Zero disables it.
	FacilityCacheSize int `json:"facility_cache_size" yaml:"facility_cache_size"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// DefaultFacilityCacheSize is used by callers that do not configure a size.
const DefaultFacilityCacheSize = 512

// Config validation errors.
var (
	ErrBackendEmpty     = errors.New("backend must not be empty")
	ErrBackendUnknown   = errors.New("unknown backend")
	ErrCacheSizeInvalid = errors.New("facility cache size must not be negative")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.FacilityCacheSize < 0 {
		return ErrCacheSizeInvalid
	}
	return nil
}
