package samtext

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAlignmentSpan(t *testing.T) {
	tests := []struct {
		pos    int
		strand byte
		cigar  string
		want   Span
	}{
		{100, '+', "1M", Span{100, 100, 100, 100}},
		{100, '+', "10S101M", Span{90, 100, 200, 200}},
		{100, '-', "10S101M", Span{200, 200, 100, 90}},
		{100, '+', "5S10M3S", Span{95, 100, 109, 112}},
		{100, '-', "5S10M3S", Span{112, 109, 100, 95}},
		// Insertions consume the query only.
		{100, '+', "10M5I10M", Span{100, 100, 119, 119}},
		// Deletions and skips advance the reference.
		{100, '+', "10M5D10M", Span{100, 100, 124, 124}},
		{100, '+', "10M100N10M", Span{100, 100, 219, 219}},
		{100, '+', "4=1X5=", Span{100, 100, 109, 109}},
		{100, '+', "10M2P10M", Span{100, 100, 119, 119}},
	}
	for _, test := range tests {
		got, err := ParseAlignmentSpan(test.pos, test.strand, test.cigar)
		assert.NoError(t, err, "cigar %s", test.cigar)
		assert.Equal(t, test.want, got, "cigar %s strand %c", test.cigar, test.strand)
	}
}

// The reverse-strand span of an alignment mirrors the forward-strand
// span of the same alignment end for end.
func TestParseAlignmentSpanStrandSymmetry(t *testing.T) {
	for _, cigar := range []string{"1M", "10S101M", "5S10M3S", "10M5D3M2S", "3S10M"} {
		fwd, err := ParseAlignmentSpan(5000, '+', cigar)
		assert.NoError(t, err)
		rev, err := ParseAlignmentSpan(5000, '-', cigar)
		assert.NoError(t, err)
		assert.Equal(t, fwd.SyntheticEnd, rev.SyntheticStart, "cigar %s", cigar)
		assert.Equal(t, fwd.End, rev.Start, "cigar %s", cigar)
		assert.Equal(t, fwd.Start, rev.End, "cigar %s", cigar)
		assert.Equal(t, fwd.SyntheticStart, rev.SyntheticEnd, "cigar %s", cigar)
	}
}

func TestParseAlignmentSpanUnmapped(t *testing.T) {
	_, err := ParseAlignmentSpan(0, '+', "*")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnmapped))
}

func TestParseAlignmentSpanHardClip(t *testing.T) {
	_, err := ParseAlignmentSpan(100, '-', "6H5M")
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrHardClipping))
}

func TestParseAlignmentSpanBadCigar(t *testing.T) {
	_, err := ParseAlignmentSpan(100, '+', "10Z")
	assert.Error(t, err)
	_, err = ParseAlignmentSpan(100, '+', "M")
	assert.Error(t, err)
}
