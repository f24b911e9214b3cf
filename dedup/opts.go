package dedup

import (
	"fmt"

	"github.com/grailbio/umidedup/umi"
)

const (
	// StoreKV selects the durable embedded-database backend.
	StoreKV = "kv"
	// StoreMemory selects the in-memory backend.
	StoreMemory = "memory"

	// DefaultBatchSize is the number of read groups written per store
	// transaction during ingestion and resolution.
	DefaultBatchSize = 100000

	// DefaultSeed seeds winner selection. Fixed so that reruns over
	// the same input keep the same reads.
	DefaultSeed = "Little Ashes"
)

// Opts for Dedup.
type Opts struct {
	// Commandline options.
	InputPath       string
	OutDir          string
	Store           string
	Kit             string
	BatchSize       int
	Unpaired        bool
	RejectUMIErrors bool
	CorrectUMIs     bool
	RandomSeed      string

	WriteDedupped   bool
	WriteFlagged    bool
	WriteDupOnly    bool
	WriteDupGroups  bool
	WriteUMIRejects bool

	DumpReadGroups bool
	DumpLocations  bool
	DumpLosers     bool
	DumpUMIErrors  bool

	// CommandLine is recorded in the @PG line of SAM outputs.
	CommandLine string
}

// validate applies defaults and rejects option combinations that
// cannot work, before any input is read.
func validate(opts *Opts) error {
	if opts.InputPath == "" {
		return fmt.Errorf("an input alignment file is required")
	}
	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	if opts.Store == "" {
		opts.Store = StoreMemory
	}
	if opts.Store != StoreKV && opts.Store != StoreMemory {
		return fmt.Errorf("unknown store backend %q, want %q or %q", opts.Store, StoreKV, StoreMemory)
	}
	if opts.Kit == "" {
		opts.Kit = umi.Bioo
	}
	if _, err := umi.KitByName(opts.Kit); err != nil {
		return err
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.BatchSize < 0 {
		return fmt.Errorf("batch size must be positive, got %d", opts.BatchSize)
	}
	if opts.RandomSeed == "" {
		opts.RandomSeed = DefaultSeed
	}
	if opts.CorrectUMIs && opts.RejectUMIErrors {
		return fmt.Errorf("correcting UMI errors while also rejecting them makes no sense; keep groups with UMI errors when correcting")
	}
	if opts.Unpaired {
		return fmt.Errorf("unpaired input is not supported; input must be paired-end")
	}
	return nil
}
