package umi

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKitByName(t *testing.T) {
	k, err := KitByName("bioo")
	assert.NoError(t, err)
	assert.Equal(t, 96, len(k.Known))
	assert.Equal(t, 8, k.Length)
	for _, u := range k.Known {
		assert.Equal(t, k.Length, len(u), "umi %s", u)
	}

	k2, err := KitByName("BIOO")
	assert.NoError(t, err)
	assert.Equal(t, k, k2)

	_, err = KitByName("nextera")
	assert.Error(t, err)
}

func TestClassifyExact(t *testing.T) {
	c := NewClassifier([]byte("AAAA\nCCCC\nGGGG\n"))
	rep := c.Classify("CCCC")
	assert.Equal(t, 0, rep.Dist)
	assert.True(t, rep.Exact())
	assert.Equal(t, []string{"CCCC"}, rep.Candidates)

	rep = c.Classify("cccc")
	assert.True(t, rep.Exact())
}

func TestClassifyNearest(t *testing.T) {
	c := NewClassifier([]byte("AAAA\nCCCC\nGGGG"))

	// One base off a single known UMI.
	rep := c.Classify("AAAT")
	assert.Equal(t, 1, rep.Dist)
	assert.Equal(t, []string{"AAAA"}, rep.Candidates)
	assert.True(t, rep.Correctable())

	// Equidistant from two known UMIs.
	rep = c.Classify("AACC")
	assert.Equal(t, 2, rep.Dist)
	assert.Equal(t, []string{"AAAA", "CCCC"}, rep.Candidates)
	assert.False(t, rep.Correctable())

	// Equidistant from all of them.
	rep = c.Classify("TTTT")
	assert.Equal(t, 4, rep.Dist)
	assert.Equal(t, 3, len(rep.Candidates))
}

func TestClassifyBiooSequencingError(t *testing.T) {
	k, err := KitByName(Bioo)
	assert.NoError(t, err)
	c := NewClassifier(k.KnownBytes())

	// An N call can only match a known UMI by its seven good bases,
	// and GGCCTAA* names exactly one Bioo UMI.
	rep := c.Classify("GGCCTAAN")
	assert.Equal(t, 1, rep.Dist)
	assert.Equal(t, []string{"GGCCTAAT"}, rep.Candidates)
	assert.True(t, rep.Correctable())
}

func TestClassifyOutOfRange(t *testing.T) {
	c := NewClassifier([]byte("AAAA"))
	rep := c.Classify("AAA")
	assert.Equal(t, MaxDist+1, rep.Dist)
	assert.False(t, rep.Exact())
	assert.False(t, rep.Correctable())
}
