package dedup

import (
	"fmt"
	"io"
	"sort"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/umidedup/encoding/samtext"
	"github.com/grailbio/umidedup/store"
	"github.com/grailbio/umidedup/umi"
)

// resolve partitions co-located read groups into duplicate groups and
// picks one winner per group; the remaining members become losers.
func (d *Dedup) resolve() error {
	if err := d.buildDupGroups(); err != nil {
		return err
	}
	return d.chooseWinners()
}

func (d *Dedup) buildDupGroups() error {
	return store.View(d.db, func(txn store.Txn) error {
		return d.locations.Scan(txn, func(key string, ids []string) error {
			d.metrics.Locations++
			if len(ids) < 2 {
				d.metrics.UniqueUMILocationCombos++
				return nil
			}
			groups := make(map[string]*samtext.ReadGroup, len(ids))
			for _, id := range ids {
				v, ok, err := d.readGroups.Get(txn, id)
				if err != nil {
					return err
				}
				if !ok {
					return errors.E("location", key, "references missing read group", id)
				}
				groups[id] = v.(*samtext.ReadGroup)
			}
			dupSets, err := d.processLocation(ids, groups)
			if err != nil {
				return err
			}
			return d.mergeDupGroups(dupSets)
		})
	})
}

// processLocation partitions the read groups at one location by their
// (possibly corrected) UMI pair, recording UMI errors and applying
// the reject policy. It returns the partitions holding more than one
// member.
func (d *Dedup) processLocation(ids []string, groups map[string]*samtext.ReadGroup) ([][]string, error) {
	byUMIPair := make(map[string][]string)
	var pairOrder []string
	for _, id := range ids {
		g := groups[id]
		anno, err := samtext.ParseAnnotation(g.Name())
		if err != nil {
			return nil, err
		}
		if len(anno.UMIs) < 2 {
			return nil, errors.E("expected one UMI per mate in read name", g.Name())
		}
		umi1, umi2 := anno.UMIs[0], anno.UMIs[1]
		rep1 := d.classifier.Classify(umi1)
		rep2 := d.classifier.Classify(umi2)
		if !rep1.Exact() || !rep2.Exact() {
			worst := rep1.Dist
			if rep2.Dist > worst {
				worst = rep2.Dist
			}
			d.recordUMIError(g.Name(), rep1, rep2)
			d.metrics.addUMIError(worst)
			if d.opts.RejectUMIErrors {
				d.metrics.addReject(worst)
				continue
			}
			// A mate is corrected only when its sibling is also
			// unambiguous, matching the gate on the c1/c2 tags.
			if d.opts.CorrectUMIs && unambiguous(rep1) && unambiguous(rep2) {
				if rep1.Correctable() {
					umi1 = rep1.Candidates[0]
				}
				if rep2.Correctable() {
					umi2 = rep2.Candidates[0]
				}
			}
		}
		pair := umi1 + samtext.AnnoElemDelim + umi2
		if _, ok := byUMIPair[pair]; !ok {
			pairOrder = append(pairOrder, pair)
		}
		byUMIPair[pair] = append(byUMIPair[pair], id)
	}

	d.metrics.UniqueUMILocationCombos += int64(len(pairOrder))
	var dupSets [][]string
	for _, pair := range pairOrder {
		set := byUMIPair[pair]
		if len(set) < 2 {
			continue
		}
		dupSets = append(dupSets, set)
		d.metrics.DupGroups++
	}
	return dupSets, nil
}

// unambiguous reports whether a mate's UMI is close enough to the
// known set (distance and candidate count at most one) for its group
// to qualify for correction.
func unambiguous(rep umi.Report) bool {
	return rep.Dist <= 1 && len(rep.Candidates) <= 1
}

// recordUMIError stores the per-mate tag runs appended to the group's
// lines during reconciliation. The correction tag is attached only
// when both mates are unambiguous and the mate itself has exactly one
// known UMI at distance one.
func (d *Dedup) recordUMIError(qname string, rep1, rep2 umi.Report) {
	rec := &umiErrorRecord{}
	rec.tags[0] = fmt.Sprintf("%s%d\t%s%d", tagMate1Dist, rep1.Dist, tagMate1Candidates, len(rep1.Candidates))
	rec.tags[1] = fmt.Sprintf("%s%d\t%s%d", tagMate2Dist, rep2.Dist, tagMate2Candidates, len(rep2.Candidates))
	if unambiguous(rep1) && unambiguous(rep2) {
		if rep1.Correctable() {
			rec.tags[0] += "\t" + tagMate1Corrected + rep1.Candidates[0]
		}
		if rep2.Correctable() {
			rec.tags[1] += "\t" + tagMate2Corrected + rep2.Candidates[0]
		}
	}
	d.umiErrors[qname] = rec
}

// mergeDupGroups folds newly found duplicate sets into the global
// partition. One read group id may never end up in two distinct
// duplicate groups.
func (d *Dedup) mergeDupGroups(dupSets [][]string) error {
	for _, set := range dupSets {
		var existing *dupGroup
		for _, id := range set {
			if g, ok := d.dupGroups[id]; ok {
				if existing != nil && existing != g {
					return errors.E("read group", id, "belongs to more than one duplicate group")
				}
				existing = g
			}
		}
		g := existing
		if g == nil {
			g = &dupGroup{ids: make(map[string]bool)}
			d.groupList = append(d.groupList, g)
		}
		for _, id := range set {
			g.ids[id] = true
			d.dupGroups[id] = g
		}
	}
	return nil
}

// chooseWinners orders the duplicate groups deterministically, then
// draws one winner per group from the run's seeded generator. Losers
// are keyed by qname so reconciliation can flag their lines.
func (d *Dedup) chooseWinners() error {
	groups := make([]*dupGroup, len(d.groupList))
	copy(groups, d.groupList)
	minID := func(g *dupGroup) string {
		ids := g.sortedIDs()
		return ids[0]
	}
	sort.Slice(groups, func(i, j int) bool { return minID(groups[i]) < minID(groups[j]) })

	idx := 0
	for idx < len(groups) {
		err := store.Update(d.db, func(txn store.Txn) error {
			for n := 0; n < d.opts.BatchSize && idx < len(groups); n++ {
				if err := d.resolveGroup(txn, groups[idx]); err != nil {
					return err
				}
				idx++
			}
			return nil
		})
		if err != nil {
			return err
		}
		log.Debug.Printf("resolve: committed %d of %d duplicate groups, heap %dMB",
			idx, len(groups), heapMB())
	}
	return nil
}

func (d *Dedup) resolveGroup(txn store.Txn, g *dupGroup) error {
	members := make([]*samtext.ReadGroup, 0, len(g.ids))
	for _, id := range g.sortedIDs() {
		v, ok, err := d.readGroups.Get(txn, id)
		if err != nil {
			return err
		}
		if !ok {
			return errors.E("duplicate group references missing read group", id)
		}
		members = append(members, v.(*samtext.ReadGroup))
	}
	sort.Slice(members, func(i, j int) bool { return members[i].Name() < members[j].Name() })
	winner := d.rng.Intn(len(members))
	// Losers map to the winner that kept their spot.
	for i, m := range members {
		if i == winner {
			continue
		}
		if err := d.losers.Put(txn, m.Name(), []string{members[winner].Name()}); err != nil {
			return err
		}
	}
	return nil
}

// writeDupGroups lists each duplicate group's stored reads, groups
// separated by blank lines, in the same deterministic order used for
// winner selection.
func (d *Dedup) writeDupGroups(w io.Writer) error {
	groups := make([]*dupGroup, len(d.groupList))
	copy(groups, d.groupList)
	minID := func(g *dupGroup) string { return g.sortedIDs()[0] }
	sort.Slice(groups, func(i, j int) bool { return minID(groups[i]) < minID(groups[j]) })

	return store.View(d.db, func(txn store.Txn) error {
		for _, g := range groups {
			for _, id := range g.sortedIDs() {
				v, ok, err := d.readGroups.Get(txn, id)
				if err != nil {
					return err
				}
				if !ok {
					return errors.E("duplicate group references missing read group", id)
				}
				for _, r := range v.(*samtext.ReadGroup).Reads {
					if err := writeLine(w, r.String()); err != nil {
						return err
					}
				}
			}
			if _, err := io.WriteString(w, "\n\n"); err != nil {
				return err
			}
		}
		return nil
	})
}
