package store

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"modernc.org/kv"
)

// Durable is the embedded-database backend. Each named keyspace lives
// in its own kv file under dir. Begin(write) opens a structural
// transaction on every keyspace opened so far, so a batch of writes
// either commits durably across all of them or leaves the files
// unmodified.
type Durable struct {
	dir   string
	files map[string]*kv.DB
}

var _ DB = (*Durable)(nil)

// OpenDurable opens (creating if needed) the database directory dir.
func OpenDurable(dir string) (*Durable, error) {
	if err := os.MkdirAll(dir, 0777); err != nil {
		return nil, errors.Wrapf(err, "store: create db dir %s", dir)
	}
	return &Durable{dir: dir, files: make(map[string]*kv.DB)}, nil
}

// OpenKV opens the named keyspace, creating its file on first use.
func (d *Durable) OpenKV(name string) (KV, error) {
	if db, ok := d.files[name]; ok {
		return &durableKV{name: name, db: db}, nil
	}
	path := filepath.Join(d.dir, name+".db")
	var (
		db  *kv.DB
		err error
	)
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		db, err = kv.Create(path, &kv.Options{})
	} else {
		db, err = kv.Open(path, &kv.Options{})
	}
	if err != nil {
		return nil, errors.Wrapf(err, "store: open %s", path)
	}
	d.files[name] = db
	return &durableKV{name: name, db: db}, nil
}

// Begin starts a transaction. Read transactions are free: kv reads
// see committed state without one.
func (d *Durable) Begin(write bool) (Txn, error) {
	if !write {
		return noopTxn{}, nil
	}
	txn := &durableTxn{}
	for _, db := range d.files {
		if err := db.BeginTransaction(); err != nil {
			txn.Rollback() // nolint: errcheck
			return nil, errors.Wrap(err, "store: begin transaction")
		}
		txn.dbs = append(txn.dbs, db)
	}
	return txn, nil
}

// Close closes every keyspace file.
func (d *Durable) Close() error {
	var first error
	for name, db := range d.files {
		if err := db.Close(); err != nil && first == nil {
			first = errors.Wrapf(err, "store: close %s", name)
		}
	}
	d.files = make(map[string]*kv.DB)
	return first
}

type durableTxn struct {
	dbs []*kv.DB
}

func (t *durableTxn) Commit() error {
	for _, db := range t.dbs {
		if err := db.Commit(); err != nil {
			return errors.Wrap(err, "store: commit")
		}
	}
	return nil
}

func (t *durableTxn) Rollback() error {
	var first error
	for _, db := range t.dbs {
		if err := db.Rollback(); err != nil && first == nil {
			first = errors.Wrap(err, "store: rollback")
		}
	}
	return first
}

type durableKV struct {
	name string
	db   *kv.DB
}

func (s *durableKV) Get(_ Txn, key string) (string, bool, error) {
	v, err := s.db.Get(nil, []byte(key))
	if err != nil {
		return "", false, errors.Wrapf(err, "store %s: get %q", s.name, key)
	}
	if v == nil {
		return "", false, nil
	}
	return string(v), true, nil
}

func (s *durableKV) Put(_ Txn, key, value string) error {
	return errors.Wrapf(s.db.Set([]byte(key), []byte(value)), "store %s: put %q", s.name, key)
}

func (s *durableKV) Scan(_ Txn, fn func(key, value string) error) error {
	en, err := s.db.SeekFirst()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return errors.Wrapf(err, "store %s: scan", s.name)
	}
	for {
		k, v, err := en.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return errors.Wrapf(err, "store %s: scan", s.name)
		}
		if err := fn(string(k), string(v)); err != nil {
			return err
		}
	}
}
