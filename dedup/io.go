package dedup

import (
	"bufio"
	"context"
	"io"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/klauspost/compress/gzip"
)

// Output file suffixes, matching what the surrounding pipeline steps
// expect to find.
const (
	suffixDedupped  = "dups_removed.sam"
	suffixFlagged   = "dups_flagged.sam"
	suffixDupOnly   = "duplicates.sam"
	suffixDupGroups = "dup_groups.samlike"
	suffixRejects   = "umi_errors.sam"
	suffixReport    = "dedup_report.txt"
	suffixStoreDir  = "dedup.db"
)

// outputName maps an input like dir/sample.sam.gz to
// <outDir>/sample.<suffix>.
func outputName(input, suffix, outDir string) string {
	base := filepath.Base(input)
	for _, ext := range []string{".gz", ".sam", ".bam"} {
		base = strings.TrimSuffix(base, ext)
	}
	return filepath.Join(outDir, base+"."+suffix)
}

// openInput opens the alignment input as a text SAM stream. Gzipped
// text is decompressed transparently; .bam input is decoded through
// samtools, which must be on PATH.
func openInput(path string) (io.ReadCloser, error) {
	switch {
	case strings.HasSuffix(path, ".bam"):
		return openBAM(path)
	case strings.HasSuffix(path, ".gz"):
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		gz, err := gzip.NewReader(f)
		if err != nil {
			f.Close() // nolint: errcheck
			return nil, errors.E(err, "not a gzip stream:", path)
		}
		return &gzReadCloser{gz: gz, f: f}, nil
	default:
		return os.Open(path)
	}
}

type gzReadCloser struct {
	gz *gzip.Reader
	f  *os.File
}

func (r *gzReadCloser) Read(p []byte) (int, error) {
	return r.gz.Read(p)
}

func (r *gzReadCloser) Close() error {
	err := r.gz.Close()
	if err2 := r.f.Close(); err == nil {
		err = err2
	}
	return err
}

func openBAM(path string) (io.ReadCloser, error) {
	samtools, err := exec.LookPath("samtools")
	if err != nil {
		return nil, errors.E("samtools is required to read .bam input but was not found on PATH")
	}
	cmd := exec.Command(samtools, "view", "-h", path)
	cmd.Stderr = os.Stderr
	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.E(err, "opening samtools pipe for:", path)
	}
	if err := cmd.Start(); err != nil {
		return nil, errors.E(err, "starting samtools view for:", path)
	}
	return &bamReadCloser{cmd: cmd, out: out}, nil
}

type bamReadCloser struct {
	cmd *exec.Cmd
	out io.ReadCloser
}

func (r *bamReadCloser) Read(p []byte) (int, error) {
	return r.out.Read(p)
}

func (r *bamReadCloser) Close() error {
	err := r.out.Close()
	if err2 := r.cmd.Wait(); err == nil {
		err = err2
	}
	return err
}

// sink is one output stream. Disabled sinks write to a null writer so
// the code paths writing to them stay uniform.
type sink struct {
	w  io.Writer
	bw *bufio.Writer
	f  file.File
}

func newSink(ctx context.Context, enabled bool, path string) (*sink, error) {
	if !enabled {
		return &sink{w: ioutil.Discard}, nil
	}
	f, err := file.Create(ctx, path)
	if err != nil {
		return nil, errors.E(err, "couldn't create output file:", path)
	}
	bw := bufio.NewWriter(f.Writer(ctx))
	return &sink{w: bw, bw: bw, f: f}, nil
}

func (s *sink) Close(ctx context.Context) error {
	if s.f == nil {
		return nil
	}
	err := s.bw.Flush()
	if err2 := s.f.Close(ctx); err == nil {
		err = err2
	}
	return err
}

func writeLine(w io.Writer, line string) error {
	if _, err := io.WriteString(w, line); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
