package samtext

import (
	"fmt"
	"strconv"
	"strings"
)

// ReadGroup is the ordered set of alignment lines sharing one qname:
// both mates of a pair, plus any multi-mapped alignments, in input
// order.
type ReadGroup struct {
	Reads []Read
}

// Name returns the shared (annotated) qname.
func (g *ReadGroup) Name() string {
	if len(g.Reads) == 0 {
		return ""
	}
	return g.Reads[0].QName
}

// Len returns the number of reads in the group.
func (g *ReadGroup) Len() int {
	return len(g.Reads)
}

// Append adds r to the group.
func (g *ReadGroup) Append(r Read) {
	g.Reads = append(g.Reads, r)
}

// Encode serializes the group for the object store. The reads are
// rendered in SAM column order and joined with an ASCII record
// separator; DecodeReadGroup inverts this exactly.
func (g *ReadGroup) Encode() string {
	parts := make([]string, len(g.Reads))
	for i, r := range g.Reads {
		parts[i] = r.String()
	}
	return strings.Join(parts, groupDelim)
}

// DecodeReadGroup parses the serialized form produced by Encode.
func DecodeReadGroup(s string) (*ReadGroup, error) {
	var g ReadGroup
	for _, part := range strings.Split(s, groupDelim) {
		r, err := ParseRead(part)
		if err != nil {
			return nil, err
		}
		g.Append(r)
	}
	return &g, nil
}

// GroupCodec is the object-store codec for ReadGroups.
type GroupCodec struct{}

// Encode implements the store codec contract.
func (GroupCodec) Encode(v interface{}) string {
	return v.(*ReadGroup).Encode()
}

// Decode implements the store codec contract.
func (GroupCodec) Decode(s string) (interface{}, error) {
	g, err := DecodeReadGroup(s)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Annotation is the UMI/trim payload embedded in an annotated qname.
// For a paired-end read the UMIs and Trims slices each hold one value
// per mate.
type Annotation struct {
	UMIs  []string
	Trims []int
}

// ParseAnnotation extracts the annotation from a qname of the form
// <name>-<umi1>^<umi2>;<trim1>^<trim2>.
func ParseAnnotation(qname string) (Annotation, error) {
	nameParts := strings.Split(qname, AnnoDelim)
	if len(nameParts) < 2 {
		return Annotation{}, fmt.Errorf("samtext: read name %q carries no annotation", qname)
	}
	segs := strings.Split(nameParts[1], AnnoTypeDelim)
	if len(segs) < 2 {
		return Annotation{}, fmt.Errorf("samtext: read name %q is missing the 5' trim record", qname)
	}
	var anno Annotation
	anno.UMIs = strings.Split(segs[0], AnnoPairDelim)
	for _, t := range strings.Split(segs[1], AnnoPairDelim) {
		n, err := strconv.Atoi(t)
		if err != nil {
			return Annotation{}, fmt.Errorf("samtext: bad 5' trim value %q in read name %q", t, qname)
		}
		anno.Trims = append(anno.Trims, n)
	}
	return anno, nil
}
