package samtext

import (
	"errors"
	"fmt"
)

// ErrHardClipping marks alignments whose CIGAR contains an H
// operation. The unclipped fragment boundaries of a hard-clipped read
// cannot be reconstructed from the alignment record, so such reads
// cannot participate in location keys.
var ErrHardClipping = errors.New("samtext: hard clipping is not supported")

// ErrUnmapped marks records without an alignment (CIGAR "*", as
// aligners emit for an unmapped mate). Such records carry no genomic
// origin to index.
var ErrUnmapped = errors.New("samtext: read is unmapped")

// Span holds the clip-corrected coordinates of one alignment.
// Start/End bound the aligned reference bases. SyntheticStart and
// SyntheticEnd add the soft-clipped lengths back, approximating where
// the full fragment would have aligned; SyntheticStart is always the
// 5' end of the read, so for a reverse-strand alignment
// SyntheticStart > SyntheticEnd.
type Span struct {
	SyntheticStart int
	Start          int
	End            int
	SyntheticEnd   int
}

// ParseAlignmentSpan computes the Span of an alignment from its
// leftmost reference position, strand, and CIGAR string. M, =, X, D,
// and N advance the reference; I and P do not. A leading S is the
// left clip, any other S the right clip. H returns ErrHardClipping;
// the unmapped placeholder "*" returns ErrUnmapped.
func ParseAlignmentSpan(pos int, strand byte, cigar string) (Span, error) {
	if cigar == "*" {
		return Span{}, ErrUnmapped
	}
	var (
		leftClip  int
		rightClip int
		alignLen  int
		num       int
		haveNum   bool
		sawOp     bool
	)
	for i := 0; i < len(cigar); i++ {
		c := cigar[i]
		if c >= '0' && c <= '9' {
			num = num*10 + int(c-'0')
			haveNum = true
			continue
		}
		if !haveNum {
			return Span{}, fmt.Errorf("samtext: CIGAR operator %q without a length in %q", c, cigar)
		}
		switch c {
		case 'H':
			return Span{}, fmt.Errorf("%w: cigar %q at pos %d (%c)", ErrHardClipping, cigar, pos, strand)
		case 'S':
			if !sawOp {
				leftClip = num
			} else {
				rightClip = num
			}
		case 'M', '=', 'X', 'D', 'N':
			alignLen += num
		case 'I', 'P':
			// Consumes the query or nothing; the reference does not advance.
		default:
			return Span{}, fmt.Errorf("samtext: unknown CIGAR operator %q in %q", c, cigar)
		}
		num = 0
		haveNum = false
		sawOp = true
	}

	var s Span
	if strand == '-' {
		s.SyntheticEnd = pos - leftClip
		s.End = pos
		s.Start = pos + alignLen - 1
		s.SyntheticStart = s.Start + rightClip
	} else {
		s.SyntheticStart = pos - leftClip
		s.Start = pos
		s.End = pos + alignLen - 1
		s.SyntheticEnd = s.End + rightClip
	}
	return s, nil
}
