// Package umi describes UMI library-prep kits and classifies
// sequenced UMIs against a kit's known set.
package umi

import (
	"fmt"
	"strings"
)

// A Kit describes the UMI chemistry of a library prep: the UMIs the
// kit ligates and their common length.
type Kit struct {
	Name   string
	Known  []string
	Length int
}

// Bioo is the Bioo Scientific NEXTflex kit: 96 known 8nt UMIs.
const Bioo = "bioo"

var kits = map[string]*Kit{
	Bioo: {Name: Bioo, Known: biooUMIs, Length: 8},
}

// KitByName returns the named kit. An unknown name is a
// configuration error.
func KitByName(name string) (*Kit, error) {
	k, ok := kits[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("umi: unsupported kit %q", name)
	}
	return k, nil
}

// KnownBytes returns the known UMIs as a newline-separated list, the
// form NewClassifier accepts.
func (k *Kit) KnownBytes() []byte {
	return []byte(strings.Join(k.Known, "\n"))
}

var biooUMIs = []string{
	"AACGCCAT", "AAGGTACG", "AATTCCGG", "ACACAGAG", "ACACTCAG",
	"ACACTGTG", "ACAGGACA", "ACCTGTAG", "ACGAAGGT", "ACGACTTG",
	"ACGTCAAC", "ACGTCATG", "ACTGTCAG", "ACTGTGAC", "AGACACTC",
	"AGAGGAGA", "AGCATCGT", "AGCATGGA", "AGCTACCA", "AGCTCTAG",
	"AGGACAAC", "AGGACATG", "AGGTTGCT", "AGTCGAGA", "AGTGCTGT",
	"ATAAGCGG", "ATCCATGG", "ATCGAACC", "ATCGCGTA", "ATCGTTGG",
	"CAACGATC", "CAACGTTG", "CAACTGGT", "CAAGTCGT", "CACACACA",
	"CAGTACTG", "CATCAGCA", "CATCGTTC", "CCAAGGTT", "CCTAGCTT",
	"CGATTACG", "CGCCTATT", "CGTTCCAT", "CGTTGGAT", "CTACGTTC",
	"CTACTCGT", "CTAGAGGA", "CTAGGAAG", "CTAGGTAC", "CTCAGTCT",
	"CTGACTGA", "CTGAGTGT", "CTGATGTG", "CTGTTCAC", "CTTCGTTG",
	"GAACAGGT", "GAAGACCA", "GAAGTGCA", "GACATGAG", "GAGAAGAG",
	"GAGAAGTC", "GATCCTAG", "GATGTCGT", "GCCGATAT", "GCCGATTA",
	"GCGGTATT", "GGAATTGG", "GGATAACG", "GGCCTAAT", "GGCGTATT",
	"GTCTTGTC", "GTGATGAG", "GTGATGTC", "GTGTACTG", "GTGTAGTC",
	"GTTCACCT", "GTTCTGCT", "GTTGTCGA", "TACGAACC", "TAGCAAGG",
	"TAGCTAGC", "TAGGTTCG", "TATAGCGC", "TCAGGACT", "TCCACATC",
	"TCGACTTC", "TCGTAGGT", "TCGTCATC", "TGAGACTC", "TGAGAGTG",
	"TGAGTGAG", "TGCTTGGA", "TGGAGTAG", "TGTGTGTG", "TTCGCCTA",
	"TTCGTTCG",
}
