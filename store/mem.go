package store

import "sort"

// Mem is the in-memory backend. Transactions are no-ops that always
// commit; every Put is immediately visible and nothing survives the
// process. Suited to inputs whose working set fits in memory.
type Mem struct {
	kvs map[string]*memKV
}

var _ DB = (*Mem)(nil)

// NewMem returns an empty in-memory DB.
func NewMem() *Mem {
	return &Mem{kvs: make(map[string]*memKV)}
}

// OpenKV returns the named keyspace, creating it if needed.
func (m *Mem) OpenKV(name string) (KV, error) {
	if kv, ok := m.kvs[name]; ok {
		return kv, nil
	}
	kv := &memKV{data: make(map[string]string)}
	m.kvs[name] = kv
	return kv, nil
}

// Begin returns a no-op transaction.
func (m *Mem) Begin(write bool) (Txn, error) {
	return noopTxn{}, nil
}

// Close releases nothing.
func (m *Mem) Close() error {
	return nil
}

type noopTxn struct{}

func (noopTxn) Commit() error   { return nil }
func (noopTxn) Rollback() error { return nil }

type memKV struct {
	data map[string]string
}

func (kv *memKV) Get(_ Txn, key string) (string, bool, error) {
	v, ok := kv.data[key]
	return v, ok, nil
}

func (kv *memKV) Put(_ Txn, key, value string) error {
	kv.data[key] = value
	return nil
}

func (kv *memKV) Scan(_ Txn, fn func(key, value string) error) error {
	keys := make([]string, 0, len(kv.data))
	for k := range kv.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := fn(k, kv.data[k]); err != nil {
			return err
		}
	}
	return nil
}
