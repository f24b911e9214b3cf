package umi

import (
	"bufio"
	"bytes"
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/grailbio/base/log"
)

// MaxDist is the largest Hamming distance considered when matching a
// sequenced UMI against the known set.
const MaxDist = 8

// A Report describes how far a sequenced UMI sits from the known set.
type Report struct {
	// Dist is the Hamming distance to the nearest known UMI(s); zero
	// for an exact match. A Dist greater than MaxDist means no known
	// UMI was within range (a length mismatch, in practice).
	Dist int
	// Candidates holds every known UMI at distance Dist.
	Candidates []string
}

// Exact reports an exact match against the known set.
func (r Report) Exact() bool {
	return r.Dist == 0
}

// Correctable reports whether the UMI may safely be snapped to a
// known UMI: distance one with exactly one candidate.
func (r Report) Correctable() bool {
	return r.Dist == 1 && len(r.Candidates) == 1
}

// Classifier classifies sequenced UMIs against a known-UMI set.
type Classifier struct {
	known    []string
	knownSet map[string]bool
}

// NewClassifier builds a Classifier from a newline-separated list of
// known UMIs. Blank lines are ignored; case is folded to upper.
func NewClassifier(known []byte) *Classifier {
	c := &Classifier{knownSet: make(map[string]bool)}
	scanner := bufio.NewScanner(bytes.NewReader(known))
	for scanner.Scan() {
		u := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if u == "" {
			continue
		}
		if !c.knownSet[u] {
			c.known = append(c.known, u)
			c.knownSet[u] = true
		}
	}
	return c
}

// Classify reports the minimal Hamming distance from u to the known
// set and every known UMI at that distance. Distances beyond MaxDist
// are not searched.
func (c *Classifier) Classify(u string) Report {
	u = strings.ToUpper(u)
	if c.knownSet[u] {
		return Report{Dist: 0, Candidates: []string{u}}
	}
	best := MaxDist + 1
	var candidates []string
	for _, k := range c.known {
		d, err := matchr.Hamming(k, u)
		if err != nil || d > MaxDist {
			continue
		}
		switch {
		case d < best:
			best = d
			candidates = append(candidates[:0], k)
		case d == best:
			candidates = append(candidates, k)
		}
	}
	if best > MaxDist {
		log.Error.Printf("umi %q is not within distance %d of any known umi", u, MaxDist)
		return Report{Dist: best}
	}
	return Report{Dist: best, Candidates: candidates}
}
