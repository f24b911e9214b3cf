package dedup

import (
	"bytes"
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/grailbio/testutil"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
)

func TestSetupAndRun(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	inputPath := filepath.Join(tempDir, "sample.sam")
	assert.NoError(t, ioutil.WriteFile(inputPath, []byte(dupInput), 0644))

	opts := &Opts{
		InputPath:       inputPath,
		OutDir:          tempDir,
		Store:           StoreKV,
		BatchSize:       2,
		RejectUMIErrors: true,
		WriteDedupped:   true,
		WriteFlagged:    true,
		WriteDupOnly:    true,
		WriteDupGroups:  true,
		WriteUMIRejects: true,
		CommandLine:     "umi-dedup -input sample.sam",
	}
	assert.NoError(t, SetupAndRun(context.Background(), opts))

	readFile := func(suffix string) string {
		b, err := ioutil.ReadFile(filepath.Join(tempDir, "sample."+suffix))
		assert.NoError(t, err)
		return string(b)
	}

	dedupped := readFile(suffixDedupped)
	assert.Equal(t, 6, len(alignmentLines(dedupped)))
	assert.Contains(t, dedupped, "@PG\tID:umi-dedup")

	flagged := readFile(suffixFlagged)
	assert.Equal(t, 8, len(alignmentLines(flagged)))

	dupOnly := readFile(suffixDupOnly)
	assert.Equal(t, 2, len(alignmentLines(dupOnly)))

	dupGroups := readFile(suffixDupGroups)
	assert.Equal(t, 4, len(alignmentLines(dupGroups)))

	report := readFile(suffixReport)
	assert.Contains(t, report, "num_dup_groups: 1\n")
	assert.Contains(t, report, "num_read_groups: 4\n")

	// The durable store directory was created next to the outputs.
	info, err := os.Stat(filepath.Join(tempDir, "sample."+suffixStoreDir))
	assert.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSetupAndRunGzInput(t *testing.T) {
	tempDir, cleanup := testutil.TempDir(t, "", "")
	defer cleanup()

	inputPath := filepath.Join(tempDir, "sample.sam.gz")
	assert.NoError(t, ioutil.WriteFile(inputPath, gzipBytes(t, dupInput), 0644))

	opts := &Opts{
		InputPath:       inputPath,
		OutDir:          tempDir,
		RejectUMIErrors: true,
		WriteDedupped:   true,
	}
	assert.NoError(t, SetupAndRun(context.Background(), opts))

	b, err := ioutil.ReadFile(filepath.Join(tempDir, "sample."+suffixDedupped))
	assert.NoError(t, err)
	assert.Equal(t, 6, len(alignmentLines(string(b))))
}

func TestOpenInputMissingFile(t *testing.T) {
	_, err := openInput("does-not-exist.sam")
	assert.Error(t, err)
}

func gzipBytes(t *testing.T, s string) []byte {
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(s))
	assert.NoError(t, err)
	assert.NoError(t, gz.Close())
	return buf.Bytes()
}
