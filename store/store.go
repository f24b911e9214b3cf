// Package store provides the key-value stores backing the dedup
// pipeline. A DB owns a set of named ordered keyspaces and hands out
// transactions; the typed shapes (ObjectStore, BucketStore,
// LocationStore) compose over the primitive KV and never branch on
// the backend. Two backends exist: Mem holds everything in maps with
// no-op transactions, Durable persists each keyspace in an embedded
// database file with real commit/rollback, trading speed for bounded
// memory.
package store

// Txn is one open transaction. Exactly one of Commit or Rollback
// must be called.
type Txn interface {
	Commit() error
	Rollback() error
}

// KV is the primitive ordered string keyspace a backend exposes.
type KV interface {
	Get(txn Txn, key string) (string, bool, error)
	Put(txn Txn, key, value string) error
	// Scan calls fn for every pair in ascending key order. A non-nil
	// error from fn stops the scan and is returned.
	Scan(txn Txn, fn func(key, value string) error) error
}

// DB owns a set of named keyspaces. Keyspaces must be opened before
// beginning a write transaction; a write transaction spans every open
// keyspace.
type DB interface {
	OpenKV(name string) (KV, error)
	Begin(write bool) (Txn, error)
	Close() error
}

// Update runs fn inside a write transaction, committing on success
// and rolling back if fn returns an error or panics.
func Update(db DB, fn func(Txn) error) error {
	txn, err := db.Begin(true)
	if err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			txn.Rollback() // nolint: errcheck
			panic(r)
		}
	}()
	if err := fn(txn); err != nil {
		txn.Rollback() // nolint: errcheck
		return err
	}
	return txn.Commit()
}

// View runs fn inside a read transaction.
func View(db DB, fn func(Txn) error) error {
	txn, err := db.Begin(false)
	if err != nil {
		return err
	}
	if err := fn(txn); err != nil {
		txn.Rollback() // nolint: errcheck
		return err
	}
	return txn.Commit()
}
