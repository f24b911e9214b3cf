// Package samtext models aligned reads from a text SAM stream: the
// six-field read record, qname-grouped reads with their UMI/trim
// annotations, clip-corrected alignment spans, and the location keys
// that drive duplicate detection.
package samtext

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grailbio/hts/sam"
)

// Delimiters used by the upstream annotation step when it folds UMIs
// and 5' trim lengths into the read name, e.g.
//
//	D00597:180:C7NMDANXX:6:1101:1184:39633-GGCCTAAT^AGCTCTAG;2^0
const (
	// AnnoDelim separates the original read name from the annotation
	// payload.
	AnnoDelim = "-"
	// AnnoPairDelim separates per-mate values within one record type.
	AnnoPairDelim = "^"
	// AnnoTypeDelim separates annotation record types (UMIs, trims).
	AnnoTypeDelim = ";"
	// AnnoElemDelim separates elements of one record type, and the
	// per-read parts of a location key.
	AnnoElemDelim = ","

	fieldDelim = "\t"

	// groupDelim separates the serialized reads of a ReadGroup. ASCII
	// record separator, which cannot appear in SAM text fields.
	groupDelim = "\x1e"
)

// Read is one alignment line reduced to the fields duplicate
// detection needs. The remaining SAM columns are not retained; the
// reconciliation pass re-reads the input for full lines.
type Read struct {
	QName string
	Flag  int
	RName string
	Pos   int
	MapQ  string
	Cigar string
}

// ParseRead parses the first six tab-separated fields of an alignment
// line.
func ParseRead(line string) (Read, error) {
	f := strings.SplitN(line, fieldDelim, 7)
	if len(f) < 6 {
		return Read{}, fmt.Errorf("samtext: alignment line has %d fields, want at least 6: %q", len(f), line)
	}
	flag, err := strconv.Atoi(f[1])
	if err != nil {
		return Read{}, fmt.Errorf("samtext: bad FLAG field %q in line %q", f[1], line)
	}
	pos, err := strconv.Atoi(f[3])
	if err != nil {
		return Read{}, fmt.Errorf("samtext: bad POS field %q in line %q", f[3], line)
	}
	return Read{
		QName: f[0],
		Flag:  flag,
		RName: f[2],
		Pos:   pos,
		MapQ:  f[4],
		Cigar: f[5],
	}, nil
}

// String returns the retained fields in SAM column order,
// tab-separated. ParseRead(r.String()) reproduces r.
func (r Read) String() string {
	return strings.Join([]string{
		r.QName,
		strconv.Itoa(r.Flag),
		r.RName,
		strconv.Itoa(r.Pos),
		r.MapQ,
		r.Cigar,
	}, fieldDelim)
}

// Reverse reports whether the read aligned to the reverse strand.
func (r Read) Reverse() bool {
	return r.Flag&int(sam.Reverse) != 0
}

// Strand returns '+' or '-'.
func (r Read) Strand() byte {
	if r.Reverse() {
		return '-'
	}
	return '+'
}
