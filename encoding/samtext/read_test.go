package samtext

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const annoQName = "D00597:180:C7NMDANXX:6:1101:1184:39633-GGCCTAAT^AGCTCTAG;2^0"

func TestParseRead(t *testing.T) {
	line := annoQName + "\t0\tchr5\t1000000\t60\t101M\t*\t0\t0\tACGT\tFFFF"
	r, err := ParseRead(line)
	assert.NoError(t, err)
	assert.Equal(t, annoQName, r.QName)
	assert.Equal(t, 0, r.Flag)
	assert.Equal(t, "chr5", r.RName)
	assert.Equal(t, 1000000, r.Pos)
	assert.Equal(t, "60", r.MapQ)
	assert.Equal(t, "101M", r.Cigar)
	assert.Equal(t, byte('+'), r.Strand())

	// String retains exactly the first six columns.
	rt, err := ParseRead(r.String())
	assert.NoError(t, err)
	assert.Equal(t, r, rt)
}

func TestParseReadErrors(t *testing.T) {
	_, err := ParseRead("short\tline")
	assert.Error(t, err)
	_, err = ParseRead("q\tnotaflag\tchr1\t10\t60\t5M")
	assert.Error(t, err)
	_, err = ParseRead("q\t0\tchr1\tnotapos\t60\t5M")
	assert.Error(t, err)
}

func TestReadStrand(t *testing.T) {
	r := Read{Flag: 16}
	assert.True(t, r.Reverse())
	assert.Equal(t, byte('-'), r.Strand())
	r.Flag = 163
	assert.False(t, r.Reverse())
	assert.Equal(t, byte('+'), r.Strand())
}

func TestReadGroupRoundTrip(t *testing.T) {
	g := &ReadGroup{}
	g.Append(Read{QName: annoQName, Flag: 0, RName: "chr5", Pos: 1000000, MapQ: "60", Cigar: "101M"})
	g.Append(Read{QName: annoQName, Flag: 16, RName: "chr5", Pos: 1000400, MapQ: "60", Cigar: "101M"})
	assert.Equal(t, 2, g.Len())
	assert.Equal(t, annoQName, g.Name())

	decoded, err := DecodeReadGroup(g.Encode())
	assert.NoError(t, err)
	assert.Equal(t, g, decoded)
}

func TestGroupCodec(t *testing.T) {
	g := &ReadGroup{}
	g.Append(Read{QName: annoQName, Flag: 0, RName: "chr1", Pos: 5, MapQ: "0", Cigar: "10M"})
	var codec GroupCodec
	v, err := codec.Decode(codec.Encode(g))
	assert.NoError(t, err)
	assert.Equal(t, g, v)
}

func TestParseAnnotation(t *testing.T) {
	anno, err := ParseAnnotation(annoQName)
	assert.NoError(t, err)
	assert.Equal(t, []string{"GGCCTAAT", "AGCTCTAG"}, anno.UMIs)
	assert.Equal(t, []int{2, 0}, anno.Trims)
}

func TestParseAnnotationErrors(t *testing.T) {
	_, err := ParseAnnotation("D00597:180:C7NMDANXX:6:1101:1184:39633")
	assert.Error(t, err)
	_, err = ParseAnnotation("name-GGCCTAAT^AGCTCTAG")
	assert.Error(t, err)
	_, err = ParseAnnotation("name-GGCCTAAT^AGCTCTAG;x^0")
	assert.Error(t, err)
}
