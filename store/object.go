package store

import (
	"fmt"
	"io"
)

// A Codec converts between an object and the text form persisted in a
// backend. Decode must invert Encode exactly.
type Codec interface {
	Encode(v interface{}) string
	Decode(s string) (interface{}, error)
}

// ObjectStore maps an id to one serialized object.
type ObjectStore struct {
	kv    KV
	codec Codec
}

// NewObjectStore returns an ObjectStore over kv using codec.
func NewObjectStore(kv KV, codec Codec) *ObjectStore {
	return &ObjectStore{kv: kv, codec: codec}
}

// Put stores v under id.
func (s *ObjectStore) Put(txn Txn, id string, v interface{}) error {
	return s.kv.Put(txn, id, s.codec.Encode(v))
}

// Get returns the object stored under id, or ok=false if absent.
func (s *ObjectStore) Get(txn Txn, id string) (interface{}, bool, error) {
	raw, ok, err := s.kv.Get(txn, id)
	if err != nil || !ok {
		return nil, ok, err
	}
	v, err := s.codec.Decode(raw)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// Scan calls fn for every stored object in id order.
func (s *ObjectStore) Scan(txn Txn, fn func(id string, v interface{}) error) error {
	return s.kv.Scan(txn, func(k, raw string) error {
		v, err := s.codec.Decode(raw)
		if err != nil {
			return err
		}
		return fn(k, v)
	})
}

// Dump writes a "key: value" listing in key order, for debugging.
func (s *ObjectStore) Dump(txn Txn, w io.Writer) error {
	return s.kv.Scan(txn, func(k, raw string) error {
		_, err := fmt.Fprintf(w, "%s: %s\n", k, raw)
		return err
	})
}
