package dedup

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/hts/sam"
	"github.com/grailbio/umidedup/encoding/samtext"
	"github.com/grailbio/umidedup/store"
)

// outputs holds the reconciliation output streams.
type outputs struct {
	dedupped io.Writer
	flagged  io.Writer
	dupOnly  io.Writer
	rejects  io.Writer
}

func (d *Dedup) createOutputs(ctx context.Context) (*outputs, func() error, error) {
	var sinks []*sink
	open := func(enabled bool, suffix string) (io.Writer, error) {
		s, err := newSink(ctx, enabled, outputName(d.opts.InputPath, suffix, d.opts.OutDir))
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, s)
		return s.w, nil
	}
	closeAll := func() error {
		var first error
		for _, s := range sinks {
			if err := s.Close(ctx); err != nil && first == nil {
				first = err
			}
		}
		return first
	}

	var outs outputs
	var err error
	if outs.dedupped, err = open(d.opts.WriteDedupped, suffixDedupped); err == nil {
		if outs.flagged, err = open(d.opts.WriteFlagged, suffixFlagged); err == nil {
			if outs.dupOnly, err = open(d.opts.WriteDupOnly, suffixDupOnly); err == nil {
				outs.rejects, err = open(d.opts.WriteUMIRejects, suffixRejects)
			}
		}
	}
	if err != nil {
		closeAll() // nolint: errcheck
		return nil, nil, err
	}
	return &outs, closeAll, nil
}

// provenanceLine is the @PG record appended to output headers.
func (d *Dedup) provenanceLine() string {
	return fmt.Sprintf("@PG\tID:%s\tPN:%s\tVN:v%s\tCL:%s", toolName, toolName, Version, d.opts.CommandLine)
}

// reconcile re-streams the input, routing each qname group to the
// output streams according to the losers store and the UMI-error
// records. Raw lines pass through byte for byte except for the
// appended UMI-error tags and the duplicate FLAG bit on losers.
func (d *Dedup) reconcile(in io.Reader, outs *outputs) error {
	sc := samtext.NewScanner(in)
	wroteHeader := false
	err := store.View(d.db, func(txn store.Txn) error {
		for sc.Scan() {
			if !wroteHeader {
				if err := d.writeHeader(sc.Header(), outs); err != nil {
					return err
				}
				wroteHeader = true
			}
			qname := sc.Group().Name()
			lines := sc.Lines()
			rec := d.umiErrors[qname]
			if rec != nil {
				for i := range lines {
					lines[i] = lines[i] + "\t" + rec.tags[i%2]
				}
			}
			loser, err := d.losers.Contains(txn, qname)
			if err != nil {
				return err
			}
			switch {
			case loser:
				for _, line := range lines {
					flagged, err := setDuplicateFlag(line)
					if err != nil {
						return err
					}
					if err := writeLine(outs.flagged, flagged); err != nil {
						return err
					}
					if err := writeLine(outs.dupOnly, flagged); err != nil {
						return err
					}
				}
			case rec != nil && d.opts.RejectUMIErrors:
				for _, line := range lines {
					if err := writeLine(outs.rejects, line); err != nil {
						return err
					}
				}
			default:
				for _, line := range lines {
					if err := writeLine(outs.dedupped, line); err != nil {
						return err
					}
					if err := writeLine(outs.flagged, line); err != nil {
						return err
					}
				}
			}
		}
		if err := sc.Err(); err != nil {
			return err
		}
		if !wroteHeader {
			return d.writeHeader(sc.Header(), outs)
		}
		return nil
	})
	return err
}

// writeHeader copies the input header to every stream, inserting the
// provenance line right after @HD.
func (d *Dedup) writeHeader(header []string, outs *outputs) error {
	streams := []io.Writer{outs.dedupped, outs.flagged, outs.dupOnly, outs.rejects}
	emit := func(line string) error {
		for _, w := range streams {
			if err := writeLine(w, line); err != nil {
				return err
			}
		}
		return nil
	}
	for _, line := range header {
		if err := emit(line); err != nil {
			return err
		}
		if strings.HasPrefix(line, "@HD") {
			if err := emit(d.provenanceLine()); err != nil {
				return err
			}
		}
	}
	return nil
}

// setDuplicateFlag returns line with the PCR/optical duplicate bit
// set in its FLAG field.
func setDuplicateFlag(line string) (string, error) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) < 3 {
		return "", errors.E("malformed alignment line:", line)
	}
	flag, err := strconv.Atoi(parts[1])
	if err != nil {
		return "", errors.E(err, "bad FLAG field in:", line)
	}
	parts[1] = strconv.Itoa(flag | int(sam.Duplicate))
	return strings.Join(parts, "\t"), nil
}
