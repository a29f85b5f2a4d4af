package sqlite

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mesh-intelligence/restroom/pkg/types"
)

// facilityCache maps placeId to facility. Facilities are never updated or
// deleted once created, so entries cannot go stale. A nil cache is a no-op.
type facilityCache struct {
	lru *lru.Cache[string, types.Facility]
}

func newFacilityCache(size int) (*facilityCache, error) {
	if size <= 0 {
		return nil, nil
	}
	l, err := lru.New[string, types.Facility](size)
	if err != nil {
		return nil, err
	}
	return &facilityCache{lru: l}, nil
}

func (c *facilityCache) get(placeID string) (*types.Facility, bool) {
	if c == nil {
		return nil, false
	}
	f, ok := c.lru.Get(placeID)
	if !ok {
		return nil, false
	}
	return &f, true
}

func (c *facilityCache) add(f *types.Facility) {
	if c == nil || f == nil {
		return
	}
	c.lru.Add(f.PlaceID, *f)
}

func (c *facilityCache) len() int {
	if c == nil {
		return 0
	}
	return c.lru.Len()
}
