package samtext

import (
	"fmt"
	"strings"
)

// LocationKey reduces a ReadGroup to the string that identifies its
// duplicate candidates, e.g. "chr5:999998:+,chr5:1000500:-". Each
// read contributes its soft-clip corrected synthetic start, shifted
// by the mate's recorded 5' trim length: outward (upstream) on the
// forward strand, inward on the reverse strand. Two groups share a
// key iff their fragments started at the same genomic coordinates on
// the same strands.
func LocationKey(g *ReadGroup) (string, error) {
	anno, err := ParseAnnotation(g.Name())
	if err != nil {
		return "", err
	}
	if len(anno.Trims) == 0 {
		return "", fmt.Errorf("samtext: read name %q has no 5' trim values", g.Name())
	}
	locs := make([]string, 0, len(g.Reads))
	for i, r := range g.Reads {
		span, err := ParseAlignmentSpan(r.Pos, r.Strand(), r.Cigar)
		if err != nil {
			return "", err
		}
		trim := anno.Trims[i%len(anno.Trims)]
		start := span.SyntheticStart
		if r.Reverse() {
			start += trim
		} else {
			start -= trim
		}
		locs = append(locs, fmt.Sprintf("%s:%d:%c", r.RName, start, r.Strand()))
	}
	return strings.Join(locs, AnnoElemDelim), nil
}
