package store

import (
	bolt "go.etcd.io/bbolt"

	"src.protosketch.dev/pkg/store/storedefs"
)

const bucketRaster = "raster"

func init() {
	initDB["initialize raster table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketRaster))
		return err
	}
}

// Get returns the blob stored under key.
func (s *dbStore) Get(key string) ([]byte, error) {
	s.wg.Add(1)
	defer s.wg.Done()
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketRaster)).Get([]byte(key))
		if v == nil {
			return storedefs.ErrNotFound
		}
		// v is only valid inside the transaction.
		data = append([]byte(nil), v...)
		return nil
	})
	return data, err
}

// Put stores a blob under key.
func (s *dbStore) Put(key string, data []byte) error {
	s.wg.Add(1)
	defer s.wg.Done()
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketRaster))
		if b.Get([]byte(key)) != nil {
			return nil
		}
		return b.Put([]byte(key), data)
	})
}

// Delete removes the blob stored under key.
func (s *dbStore) Delete(key string) error {
	s.wg.Add(1)
	defer s.wg.Done()
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketRaster)).Delete([]byte(key))
	})
}
