package dedup

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"sort"
	"time"

	farm "github.com/dgryski/go-farm"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/umidedup/encoding/samtext"
	"github.com/grailbio/umidedup/store"
	"github.com/grailbio/umidedup/umi"
)

// Version of the dedup engine, recorded in @PG output lines.
const Version = "1.0.0"

const toolName = "umi-dedup"

// bucketDelim separates items in bucket-store values. Safe because
// read group ids are numeric and location keys never contain commas
// beyond their own structure.
const bucketDelim = ","

// readGroupIDDigits zero-pads read group ids so lexicographic key
// order equals ingestion order in ordered backends.
const readGroupIDDigits = 10

func formatReadGroupID(id int) string {
	return fmt.Sprintf("%0*d", readGroupIDDigits, id)
}

// Per-mate SAM tag prefixes describing UMI errors.
const (
	tagMate1Dist       = "d1:i:"
	tagMate2Dist       = "d2:i:"
	tagMate1Candidates = "n1:i:"
	tagMate2Candidates = "n2:i:"
	tagMate1Corrected  = "c1:i:"
	tagMate2Corrected  = "c2:i:"
)

// umiErrorRecord carries the tags appended to a group's output lines
// during reconciliation, one tag run per mate.
type umiErrorRecord struct {
	tags [2]string
}

// dupGroup is a set of read group ids sharing a location key and UMI
// pair. An id belongs to at most one dupGroup.
type dupGroup struct {
	ids map[string]bool
}

func (g *dupGroup) sortedIDs() []string {
	ids := make([]string, 0, len(g.ids))
	for id := range g.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Dedup ties the stores and pipeline phases together for one run.
type Dedup struct {
	opts       *Opts
	kit        *umi.Kit
	classifier *umi.Classifier

	db         store.DB
	readGroups *store.ObjectStore
	locations  *store.LocationStore
	losers     *store.BucketStore

	// umiErrors and dupGroups stay in memory in both backends; they
	// are bounded by the error and duplicate counts, not the input.
	umiErrors map[string]*umiErrorRecord
	dupGroups map[string]*dupGroup
	groupList []*dupGroup

	rng     *rand.Rand
	metrics Metrics
}

// New validates opts and opens the backing stores.
func New(opts *Opts) (*Dedup, error) {
	if err := validate(opts); err != nil {
		return nil, err
	}
	kit, err := umi.KitByName(opts.Kit)
	if err != nil {
		return nil, err
	}

	var db store.DB
	switch opts.Store {
	case StoreKV:
		dir := outputName(opts.InputPath, suffixStoreDir, opts.OutDir)
		db, err = store.OpenDurable(dir)
		if err != nil {
			return nil, err
		}
	default:
		db = store.NewMem()
	}
	rgKV, err := db.OpenKV("read_group")
	if err != nil {
		return nil, err
	}
	locKV, err := db.OpenKV("location")
	if err != nil {
		return nil, err
	}
	loserKV, err := db.OpenKV("duplicate")
	if err != nil {
		return nil, err
	}

	return &Dedup{
		opts:       opts,
		kit:        kit,
		classifier: umi.NewClassifier(kit.KnownBytes()),
		db:         db,
		readGroups: store.NewObjectStore(rgKV, samtext.GroupCodec{}),
		locations:  store.NewLocationStore(store.NewBucketStore(locKV, bucketDelim), samtext.LocationKey),
		losers:     store.NewBucketStore(loserKV, bucketDelim),
		umiErrors:  make(map[string]*umiErrorRecord),
		dupGroups:  make(map[string]*dupGroup),
		rng:        rand.New(rand.NewSource(int64(farm.Hash64([]byte(opts.RandomSeed))))),
	}, nil
}

// Close releases the backing stores.
func (d *Dedup) Close() error {
	return d.db.Close()
}

// Metrics returns the counters accumulated so far.
func (d *Dedup) Metrics() *Metrics {
	return &d.metrics
}

// Run executes the full pipeline: ingest the input, resolve duplicate
// groups, write the output streams, and write the report.
func (d *Dedup) Run(ctx context.Context) error {
	t0 := time.Now()
	in, err := openInput(d.opts.InputPath)
	if err != nil {
		return err
	}
	if err := d.ingest(in); err != nil {
		in.Close() // nolint: errcheck
		return err
	}
	if err := in.Close(); err != nil {
		return err
	}
	log.Debug.Printf("built read group and location stores in %v, heap %dMB", time.Since(t0), heapMB())

	t0 = time.Now()
	if err := d.resolve(); err != nil {
		return err
	}
	log.Debug.Printf("resolved %d duplicate groups in %v, heap %dMB",
		d.metrics.DupGroups, time.Since(t0), heapMB())

	dg, err := newSink(ctx, d.opts.WriteDupGroups, outputName(d.opts.InputPath, suffixDupGroups, d.opts.OutDir))
	if err != nil {
		return err
	}
	if err := d.writeDupGroups(dg.w); err != nil {
		dg.Close(ctx) // nolint: errcheck
		return err
	}
	if err := dg.Close(ctx); err != nil {
		return err
	}

	t0 = time.Now()
	outs, closeOuts, err := d.createOutputs(ctx)
	if err != nil {
		return err
	}
	in, err = openInput(d.opts.InputPath)
	if err != nil {
		closeOuts() // nolint: errcheck
		return err
	}
	if err := d.reconcile(in, outs); err != nil {
		in.Close()  // nolint: errcheck
		closeOuts() // nolint: errcheck
		return err
	}
	if err := in.Close(); err != nil {
		closeOuts() // nolint: errcheck
		return err
	}
	if err := closeOuts(); err != nil {
		return err
	}
	log.Debug.Printf("reconciled outputs in %v, heap %dMB", time.Since(t0), heapMB())

	if err := d.writeReport(ctx); err != nil {
		return err
	}
	return d.dumpStores()
}

func (d *Dedup) writeReport(ctx context.Context) error {
	rep, err := newSink(ctx, true, outputName(d.opts.InputPath, suffixReport, d.opts.OutDir))
	if err != nil {
		return err
	}
	if err := d.metrics.WriteReport(rep.w); err != nil {
		rep.Close(ctx) // nolint: errcheck
		return errors.E(err, "error writing report")
	}
	log.Debug.Printf("report: %d read groups, %d locations, %d duplicate groups, %d umi-error groups",
		d.metrics.ReadGroups, d.metrics.Locations, d.metrics.DupGroups, d.metrics.UMIErrorReadGroups)
	return rep.Close(ctx)
}

func (d *Dedup) dumpStores() error {
	return store.View(d.db, func(txn store.Txn) error {
		if d.opts.DumpReadGroups {
			if err := d.readGroups.Dump(txn, os.Stderr); err != nil {
				return err
			}
		}
		if d.opts.DumpLocations {
			if err := d.locations.Dump(txn, os.Stderr); err != nil {
				return err
			}
		}
		if d.opts.DumpLosers {
			if err := d.losers.Dump(txn, os.Stderr); err != nil {
				return err
			}
		}
		if d.opts.DumpUMIErrors {
			qnames := make([]string, 0, len(d.umiErrors))
			for qname := range d.umiErrors {
				qnames = append(qnames, qname)
			}
			sort.Strings(qnames)
			for _, qname := range qnames {
				rec := d.umiErrors[qname]
				fmt.Fprintf(os.Stderr, "%s: %s %s\n", qname, rec.tags[0], rec.tags[1])
			}
		}
		return nil
	})
}

// SetupAndRun validates opts, runs the dedup pipeline, and releases
// the stores.
func SetupAndRun(ctx context.Context, opts *Opts) error {
	d, err := New(opts)
	if err != nil {
		return err
	}
	if err := d.Run(ctx); err != nil {
		d.Close() // nolint: errcheck
		return err
	}
	return d.Close()
}

func heapMB() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc >> 20
}
