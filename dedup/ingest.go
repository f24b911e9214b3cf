package dedup

import (
	"io"
	"time"

	"github.com/grailbio/base/log"
	"github.com/grailbio/umidedup/encoding/samtext"
	"github.com/grailbio/umidedup/store"
)

// ingest streams the input once, grouping consecutive lines by qname
// and writing each completed group to the object store and the
// location index. Groups are committed in batches of opts.BatchSize
// so the durable backend's memory stays bounded; a group is never
// split across transactions.
func (d *Dedup) ingest(in io.Reader) error {
	sc := samtext.NewScanner(in)
	id := 1
	done := false
	for !done {
		t0 := time.Now()
		err := store.Update(d.db, func(txn store.Txn) error {
			for n := 0; n < d.opts.BatchSize; n++ {
				if !sc.Scan() {
					done = true
					return sc.Err()
				}
				g := sc.Group()
				if !d.opts.Unpaired && g.Len() < 2 {
					log.Error.Printf("read %s has a single alignment line; paired input should be grouped by name", g.Name())
				}
				idStr := formatReadGroupID(id)
				if err := d.readGroups.Put(txn, idStr, g); err != nil {
					return err
				}
				if err := d.locations.Append(txn, idStr, g); err != nil {
					return err
				}
				d.metrics.ReadGroups++
				id++
			}
			return nil
		})
		if err != nil {
			return err
		}
		log.Debug.Printf("ingest: committed through read group %d in %v, heap %dMB",
			id-1, time.Since(t0), heapMB())
	}
	return nil
}
