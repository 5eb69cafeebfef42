// Package utils provides supporting data structures for corridor rendering.
package utils

import (
	"errors"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog/log"
	"github.com/sudorandom/transfer-map/pkg/geo"
)

// PathCache memoizes arc paths by geo.ArcKey. Paths are stored as GeoJSON
// LineString geometries in an in-memory badger database, fronted by a sync.Map
// of decoded paths.
type PathCache struct {
	db    *badger.DB
	cache sync.Map
}

func OpenPathCache() (*PathCache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	// Decrease logging verbosity
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &PathCache{db: db}, nil
}

func (c *PathCache) Close() error {
	return c.db.Close()
}

// Get returns a copy of the cached path, if any.
func (c *PathCache) Get(k geo.ArcKey) ([]geo.LngLat, bool) {
	key := k.String()
	if v, ok := c.cache.Load(key); ok {
		return append([]geo.LngLat(nil), v.([]geo.LngLat)...), true
	}

	var raw []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("path cache read failed")
		return nil, false
	}
	path, err := geo.DecodePath(raw)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("dropping undecodable cached path")
		return nil, false
	}
	c.cache.Store(key, path)
	return append([]geo.LngLat(nil), path...), true
}

// Put stores path under k. Write failures only cost a rebuild.
func (c *PathCache) Put(k geo.ArcKey, path []geo.LngLat) {
	raw, err := geo.EncodePath(path)
	if err != nil {
		log.Warn().Err(err).Msg("path cache encode failed")
		return
	}
	key := k.String()
	err = c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("path cache write failed")
		return
	}
	c.cache.Store(key, append([]geo.LngLat(nil), path...))
}

// Len counts the stored paths.
func (c *PathCache) Len() (int, error) {
	n := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}
