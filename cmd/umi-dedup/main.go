package main

/*
  umi-dedup removes PCR and optical duplicates from aligned,
  UMI-annotated SAM input. For more information, see
  github.com/grailbio/umidedup/dedup/doc.go
*/

import (
	"flag"
	"os"
	"strings"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/umidedup/dedup"
	"github.com/grailbio/umidedup/umi"
)

var (
	input       = flag.String("input", "", "Input alignment file (.sam, .sam.gz, or .bam; .bam requires samtools on PATH)")
	outDir      = flag.String("out-dir", ".", "Directory for output files")
	storeFlag   = flag.String("store", dedup.StoreMemory, "Storage backend: 'memory' (fast) or 'kv' (durable, bounded memory)")
	kit         = flag.String("kit", umi.Bioo, "UMI kit used during library prep")
	batchSize   = flag.Int("batch-size", dedup.DefaultBatchSize, "Number of read groups per store transaction")
	unpaired    = flag.Bool("unpaired", false, "Reads are unpaired (not currently supported)")
	keepBadUMIs = flag.Bool("keep-bad-umis", false, "Keep read groups whose UMIs have errors instead of routing them to the rejects file")
	correctUMIs = flag.Bool("correct-umis", false, "Before duplicate grouping, correct UMIs that are Hamming distance 1 from exactly one known UMI; requires --keep-bad-umis")
	randomSeed  = flag.String("random-seed", dedup.DefaultSeed, "Seed for duplicate-group winner selection")

	noDedupped   = flag.Bool("no-dedupped-sam", false, "Do not write the SAM file with duplicates removed")
	writeFlagged = flag.Bool("flagged-sam", false, "Also write a SAM file with duplicates flagged (FLAG 0x400) rather than removed")
	noDupOnly    = flag.Bool("no-duplicates-sam", false, "Do not write the duplicates-only SAM file")
	noDupGroups  = flag.Bool("no-dup-group-file", false, "Do not write the SAM-like duplicate group listing")
	noUMIRejects = flag.Bool("no-umi-error-sam", false, "Do not write the SAM file of reads rejected for UMI errors")

	dumpReadGroups = flag.Bool("dump-rg-db", false, "Dump the read group store to stderr (debugging)")
	dumpLocations  = flag.Bool("dump-loc-db", false, "Dump the location store to stderr (debugging)")
	dumpLosers     = flag.Bool("dump-dup-db", false, "Dump the duplicate (loser) store to stderr (debugging)")
	dumpUMIErrors  = flag.Bool("dump-umi-error-db", false, "Dump the UMI error records to stderr (debugging)")
)

func main() {
	shutdown := grail.Init()
	defer shutdown()

	if flag.NArg() > 0 {
		a := flag.Args()
		log.Fatalf("unparsed flags, please check flag syntax: '%s'", strings.Join(a[len(a)-flag.NArg():], " "))
	}

	opts := dedup.Opts{
		InputPath:       *input,
		OutDir:          *outDir,
		Store:           *storeFlag,
		Kit:             *kit,
		BatchSize:       *batchSize,
		Unpaired:        *unpaired,
		RejectUMIErrors: !*keepBadUMIs,
		CorrectUMIs:     *correctUMIs,
		RandomSeed:      *randomSeed,
		WriteDedupped:   !*noDedupped,
		WriteFlagged:    *writeFlagged,
		WriteDupOnly:    !*noDupOnly,
		WriteDupGroups:  !*noDupGroups,
		WriteUMIRejects: !*noUMIRejects,
		DumpReadGroups:  *dumpReadGroups,
		DumpLocations:   *dumpLocations,
		DumpLosers:      *dumpLosers,
		DumpUMIErrors:   *dumpUMIErrors,
		CommandLine:     strings.Join(os.Args, " "),
	}

	ctx := vcontext.Background()
	if err := dedup.SetupAndRun(ctx, &opts); err != nil {
		log.Fatalf("umi-dedup: %v", err)
	}
}
