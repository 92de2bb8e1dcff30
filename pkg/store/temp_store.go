package store

import (
	"path/filepath"

	"src.protosketch.dev/pkg/store/storedefs"
	"src.protosketch.dev/pkg/testutil"
)

// MustTempStore returns a bolt Store backed by a temporary file. The store is
// closed when the test ends.
func MustTempStore(c testutil.TempDirer) storedefs.Store {
	st, err := NewStore(filepath.Join(testutil.TempDir(c), boltFileName))
	if err != nil {
		panic(err)
	}
	c.Cleanup(func() { st.Close() })
	return st
}
