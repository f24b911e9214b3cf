package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	opts := &Opts{InputPath: "in.sam"}
	assert.NoError(t, validate(opts))
	assert.Equal(t, StoreMemory, opts.Store)
	assert.Equal(t, "bioo", opts.Kit)
	assert.Equal(t, DefaultBatchSize, opts.BatchSize)
	assert.Equal(t, DefaultSeed, opts.RandomSeed)
	assert.Equal(t, ".", opts.OutDir)
}

func TestValidateErrors(t *testing.T) {
	assert.Error(t, validate(&Opts{}))
	assert.Error(t, validate(&Opts{InputPath: "in.sam", Store: "lmdb"}))
	assert.Error(t, validate(&Opts{InputPath: "in.sam", Kit: "nextera"}))
	assert.Error(t, validate(&Opts{InputPath: "in.sam", BatchSize: -5}))
	assert.Error(t, validate(&Opts{InputPath: "in.sam", Unpaired: true}))

	// Correcting and rejecting UMI errors are mutually exclusive.
	assert.Error(t, validate(&Opts{InputPath: "in.sam", CorrectUMIs: true, RejectUMIErrors: true}))
	assert.NoError(t, validate(&Opts{InputPath: "in.sam", CorrectUMIs: true}))
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "out/sample.dups_removed.sam", outputName("data/sample.sam", suffixDedupped, "out"))
	assert.Equal(t, "out/sample.dups_removed.sam", outputName("data/sample.sam.gz", suffixDedupped, "out"))
	assert.Equal(t, "out/sample.dedup_report.txt", outputName("sample.bam", suffixReport, "out"))
}
