package store

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"src.protosketch.dev/pkg/store/storedefs"
)

// Extension of blob files of the directory backend.
const blobExt = ".png"

type dirStore struct {
	dir string
}

// NewDirStore returns a Store that keeps each blob in a file named after its
// key in dir, creating dir if needed.
func NewDirStore(dir string) (storedefs.Store, error) {
	if err := mkdirAll(dir); err != nil {
		return nil, err
	}
	logger.Println("using cache directory", dir)
	return &dirStore{dir}, nil
}

func mkdirAll(dir string) error {
	return os.MkdirAll(dir, 0755)
}

func (s *dirStore) path(key string) string {
	return filepath.Join(s.dir, key+blobExt)
}

func (s *dirStore) Get(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, storedefs.ErrNotFound
	}
	return data, err
}

// Put writes the blob to a temporary file first, so that concurrent readers
// never see a partial file.
func (s *dirStore) Put(key string, data []byte) error {
	path := s.path(key)
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	f, err := os.CreateTemp(s.dir, "."+key+"-*")
	if err != nil {
		return err
	}
	_, err = f.Write(data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(f.Name(), path)
	}
	if err != nil {
		os.Remove(f.Name())
	}
	return err
}

func (s *dirStore) Delete(key string) error {
	err := os.Remove(s.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *dirStore) Close() error { return nil }
