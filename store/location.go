package store

import (
	"errors"
	"io"

	"github.com/grailbio/base/log"
	"github.com/grailbio/umidedup/encoding/samtext"
)

// LocationStore indexes ReadGroup ids by the corrected genomic
// location of the group's reads.
type LocationStore struct {
	buckets *BucketStore
	keyOf   func(*samtext.ReadGroup) (string, error)
}

// NewLocationStore returns a LocationStore appending to buckets under
// the keys produced by keyOf.
func NewLocationStore(buckets *BucketStore, keyOf func(*samtext.ReadGroup) (string, error)) *LocationStore {
	return &LocationStore{buckets: buckets, keyOf: keyOf}
}

// Append indexes id under g's location key. A group whose key cannot
// be computed because a read is hard-clipped or unmapped is dropped
// from the index with a warning; the group itself stays wherever else
// it is stored.
func (l *LocationStore) Append(txn Txn, id string, g *samtext.ReadGroup) error {
	key, err := l.keyOf(g)
	if err != nil {
		if errors.Is(err, samtext.ErrHardClipping) || errors.Is(err, samtext.ErrUnmapped) {
			log.Error.Printf("dropping read group %s from the location index: %v", g.Name(), err)
			return nil
		}
		return err
	}
	return l.buckets.Append(txn, key, id)
}

// Scan calls fn for every location bucket in key order.
func (l *LocationStore) Scan(txn Txn, fn func(key string, ids []string) error) error {
	return l.buckets.Scan(txn, fn)
}

// Dump writes the index in key order, for debugging.
func (l *LocationStore) Dump(txn Txn, w io.Writer) error {
	return l.buckets.Dump(txn, w)
}
