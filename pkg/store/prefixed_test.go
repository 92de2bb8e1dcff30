package store_test

import "src.protosketch.dev/pkg/store/storedefs"

type prefixed struct {
	storedefs.Store
	prefix string
}

func (p prefixed) Get(key string) ([]byte, error) { return p.Store.Get(p.prefix + key) }

func (p prefixed) Put(key string, data []byte) error { return p.Store.Put(p.prefix+key, data) }

func (p prefixed) Delete(key string) error { return p.Store.Delete(p.prefix + key) }
