// Package store implements the backends of the raster cache.
package store

import (
	"fmt"
	"path/filepath"

	"src.protosketch.dev/pkg/logutil"
	"src.protosketch.dev/pkg/options"
	"src.protosketch.dev/pkg/store/storedefs"
)

var logger = logutil.GetLogger("[store] ")

// Name of the database file of the bolt backend, inside the cache folder.
const boltFileName = "cache.db"

// Open opens the backend selected by opts.Cache.Backend.
func Open(opts options.Options) (storedefs.Store, error) {
	switch opts.Cache.Backend {
	case options.DirBackend:
		return NewDirStore(opts.Folder.Cache)
	case options.BoltBackend:
		if err := mkdirAll(opts.Folder.Cache); err != nil {
			return nil, err
		}
		return NewStore(filepath.Join(opts.Folder.Cache, boltFileName))
	case options.RedisBackend:
		return NewRedisStore(opts.Cache.RedisAddr)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", opts.Cache.Backend)
	}
}
