package store

import (
	"fmt"
	"io"
	"strings"
)

// BucketStore maps a key to an ordered list of items, stored as one
// delimited value. Items must not contain the delimiter.
type BucketStore struct {
	kv    KV
	delim string
}

// NewBucketStore returns a BucketStore over kv splitting on delim.
func NewBucketStore(kv KV, delim string) *BucketStore {
	return &BucketStore{kv: kv, delim: delim}
}

// Get returns the bucket's items, or ok=false for an absent key.
func (s *BucketStore) Get(txn Txn, key string) ([]string, bool, error) {
	raw, ok, err := s.kv.Get(txn, key)
	if err != nil || !ok {
		return nil, ok, err
	}
	return strings.Split(raw, s.delim), true, nil
}

// Contains reports whether key has a bucket.
func (s *BucketStore) Contains(txn Txn, key string) (bool, error) {
	_, ok, err := s.kv.Get(txn, key)
	return ok, err
}

// Put replaces the bucket at key with items.
func (s *BucketStore) Put(txn Txn, key string, items []string) error {
	return s.kv.Put(txn, key, strings.Join(items, s.delim))
}

// Append adds item to the bucket at key, creating it if needed.
func (s *BucketStore) Append(txn Txn, key, item string) error {
	return s.AppendMany(txn, key, []string{item})
}

// AppendMany adds items to the bucket at key, creating it if needed.
func (s *BucketStore) AppendMany(txn Txn, key string, items []string) error {
	if len(items) == 0 {
		return nil
	}
	raw, ok, err := s.kv.Get(txn, key)
	if err != nil {
		return err
	}
	joined := strings.Join(items, s.delim)
	if ok {
		joined = raw + s.delim + joined
	}
	return s.kv.Put(txn, key, joined)
}

// Scan calls fn for every bucket in key order.
func (s *BucketStore) Scan(txn Txn, fn func(key string, items []string) error) error {
	return s.kv.Scan(txn, func(k, raw string) error {
		return fn(k, strings.Split(raw, s.delim))
	})
}

// Dump writes a "key: value" listing in key order, for debugging.
func (s *BucketStore) Dump(txn Txn, w io.Writer) error {
	return s.kv.Scan(txn, func(k, raw string) error {
		_, err := fmt.Fprintf(w, "%s: %s\n", k, raw)
		return err
	})
}
