package store

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/grailbio/umidedup/encoding/samtext"
	"github.com/stretchr/testify/assert"
)

// stringCodec stores strings as themselves.
type stringCodec struct{}

func (stringCodec) Encode(v interface{}) string          { return v.(string) }
func (stringCodec) Decode(s string) (interface{}, error) { return s, nil }

func backends(t *testing.T) (map[string]DB, func()) {
	dir, cleanup := testutil.TempDir(t, "", "storetest")
	durable, err := OpenDurable(dir)
	assert.NoError(t, err)
	return map[string]DB{
		"memory":  NewMem(),
		"durable": durable,
	}, cleanup
}

func TestObjectStore(t *testing.T) {
	dbs, cleanup := backends(t)
	defer cleanup()
	for name, db := range dbs {
		t.Run(name, func(t *testing.T) {
			kv, err := db.OpenKV("objects")
			assert.NoError(t, err)
			objects := NewObjectStore(kv, stringCodec{})

			assert.NoError(t, Update(db, func(txn Txn) error {
				assert.NoError(t, objects.Put(txn, "0000000002", "two"))
				assert.NoError(t, objects.Put(txn, "0000000001", "one"))
				return nil
			}))

			assert.NoError(t, View(db, func(txn Txn) error {
				v, ok, err := objects.Get(txn, "0000000001")
				assert.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, "one", v)

				_, ok, err = objects.Get(txn, "0000000009")
				assert.NoError(t, err)
				assert.False(t, ok)

				var ids []string
				assert.NoError(t, objects.Scan(txn, func(id string, v interface{}) error {
					ids = append(ids, id)
					return nil
				}))
				assert.Equal(t, []string{"0000000001", "0000000002"}, ids)
				return nil
			}))
		})
	}
	for _, db := range dbs {
		assert.NoError(t, db.Close())
	}
}

func TestBucketStore(t *testing.T) {
	dbs, cleanup := backends(t)
	defer cleanup()
	for name, db := range dbs {
		t.Run(name, func(t *testing.T) {
			kv, err := db.OpenKV("buckets")
			assert.NoError(t, err)
			buckets := NewBucketStore(kv, ",")

			assert.NoError(t, Update(db, func(txn Txn) error {
				assert.NoError(t, buckets.Append(txn, "loc1", "a"))
				assert.NoError(t, buckets.Append(txn, "loc1", "b"))
				assert.NoError(t, buckets.AppendMany(txn, "loc2", []string{"c", "d"}))
				assert.NoError(t, buckets.Put(txn, "loc3", []string{"e"}))
				return nil
			}))

			assert.NoError(t, View(db, func(txn Txn) error {
				items, ok, err := buckets.Get(txn, "loc1")
				assert.NoError(t, err)
				assert.True(t, ok)
				assert.Equal(t, []string{"a", "b"}, items)

				ok, err = buckets.Contains(txn, "loc2")
				assert.NoError(t, err)
				assert.True(t, ok)
				ok, err = buckets.Contains(txn, "missing")
				assert.NoError(t, err)
				assert.False(t, ok)

				var dump bytes.Buffer
				assert.NoError(t, buckets.Dump(txn, &dump))
				assert.Equal(t, "loc1: a,b\nloc2: c,d\nloc3: e\n", dump.String())
				return nil
			}))
		})
	}
	for _, db := range dbs {
		assert.NoError(t, db.Close())
	}
}

// A failed update must leave the durable backend exactly as the last
// commit left it, and committed state must survive reopening.
func TestDurableCommitAbort(t *testing.T) {
	dir, cleanup := testutil.TempDir(t, "", "storetest")
	defer cleanup()

	db, err := OpenDurable(dir)
	assert.NoError(t, err)
	kv, err := db.OpenKV("objects")
	assert.NoError(t, err)
	objects := NewObjectStore(kv, stringCodec{})

	assert.NoError(t, Update(db, func(txn Txn) error {
		return objects.Put(txn, "kept", "v1")
	}))
	assert.Error(t, Update(db, func(txn Txn) error {
		if err := objects.Put(txn, "aborted", "v2"); err != nil {
			return err
		}
		return fmt.Errorf("induced failure")
	}))
	assert.NoError(t, db.Close())

	db, err = OpenDurable(dir)
	assert.NoError(t, err)
	defer db.Close()
	kv, err = db.OpenKV("objects")
	assert.NoError(t, err)
	objects = NewObjectStore(kv, stringCodec{})

	assert.NoError(t, View(db, func(txn Txn) error {
		v, ok, err := objects.Get(txn, "kept")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v1", v)

		_, ok, err = objects.Get(txn, "aborted")
		assert.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))
}

func TestLocationStore(t *testing.T) {
	db := NewMem()
	kv, err := db.OpenKV("locations")
	assert.NoError(t, err)
	locations := NewLocationStore(NewBucketStore(kv, ","), samtext.LocationKey)

	qname := "m1-AACGCCAT^AAGGTACG;0^0"
	group := func(pos1, pos2 int) *samtext.ReadGroup {
		g := &samtext.ReadGroup{}
		g.Append(samtext.Read{QName: qname, Flag: 0, RName: "chr1", Pos: pos1, MapQ: "60", Cigar: "10M"})
		g.Append(samtext.Read{QName: qname, Flag: 16, RName: "chr1", Pos: pos2, MapQ: "60", Cigar: "10M"})
		return g
	}

	assert.NoError(t, Update(db, func(txn Txn) error {
		assert.NoError(t, locations.Append(txn, "0000000001", group(100, 200)))
		assert.NoError(t, locations.Append(txn, "0000000002", group(100, 200)))
		assert.NoError(t, locations.Append(txn, "0000000003", group(500, 700)))

		// Hard-clipped and unmapped groups are dropped, not an error.
		hc := &samtext.ReadGroup{}
		hc.Append(samtext.Read{QName: qname, Flag: 0, RName: "chr1", Pos: 10, MapQ: "60", Cigar: "6H5M"})
		assert.NoError(t, locations.Append(txn, "0000000004", hc))

		un := group(100, 200)
		un.Reads[1] = samtext.Read{QName: qname, Flag: 4, RName: "*", Pos: 0, MapQ: "0", Cigar: "*"}
		assert.NoError(t, locations.Append(txn, "0000000005", un))
		return nil
	}))

	assert.NoError(t, View(db, func(txn Txn) error {
		var dump strings.Builder
		assert.NoError(t, locations.Dump(txn, &dump))
		assert.Equal(t,
			"chr1:100:+,chr1:209:-: 0000000001,0000000002\n"+
				"chr1:500:+,chr1:709:-: 0000000003\n",
			dump.String())
		return nil
	}))
}
