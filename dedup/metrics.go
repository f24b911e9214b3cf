package dedup

import (
	"fmt"
	"io"
	"sort"

	"github.com/grailbio/umidedup/umi"
	"github.com/guptarohit/asciigraph"
)

// Metrics counts what the final report enumerates.
type Metrics struct {
	// Locations is the number of distinct location keys seen.
	Locations int64

	// UniqueUMILocationCombos counts (location, UMI pair) combinations
	// holding exactly one read group.
	UniqueUMILocationCombos int64

	// ReadGroups is the number of qname groups ingested.
	ReadGroups int64

	// DupGroups is the number of duplicate groups found.
	DupGroups int64

	// UMIErrorReadGroups counts read groups with at least one UMI not
	// matching the kit's known set.
	UMIErrorReadGroups int64

	// UMIErrorsByDist histograms UMI-error read groups by the larger
	// of the two mates' Hamming distances. Index 1..MaxDist;
	// out-of-range distances land in the last bucket.
	UMIErrorsByDist [umi.MaxDist + 1]int64

	// RejectedByDist histograms the UMI-error read groups excluded
	// from duplicate detection.
	RejectedByDist [umi.MaxDist + 1]int64
}

func clampDist(dist int) int {
	if dist > umi.MaxDist {
		return umi.MaxDist
	}
	return dist
}

func (m *Metrics) addUMIError(dist int) {
	m.UMIErrorReadGroups++
	m.UMIErrorsByDist[clampDist(dist)]++
}

func (m *Metrics) addReject(dist int) {
	m.RejectedByDist[clampDist(dist)]++
}

// WriteReport writes the metrics as sorted "key: value" lines,
// followed by a histogram of UMI-error distances when any were seen.
func (m *Metrics) WriteReport(w io.Writer) error {
	lines := []string{
		fmt.Sprintf("num_locations: %d", m.Locations),
		fmt.Sprintf("num_unique_umi_and_location_combinations: %d", m.UniqueUMILocationCombos),
		fmt.Sprintf("num_read_groups: %d", m.ReadGroups),
		fmt.Sprintf("num_dup_groups: %d", m.DupGroups),
		fmt.Sprintf("num_read_groups_with_umi_error: %d", m.UMIErrorReadGroups),
	}
	for d := 1; d <= umi.MaxDist; d++ {
		lines = append(lines,
			fmt.Sprintf("num_read_groups_with_umi_error_dist%d: %d", d, m.UMIErrorsByDist[d]),
			fmt.Sprintf("num_read_groups_rejected_due_to_umi_error_dist%d: %d", d, m.RejectedByDist[d]))
	}
	sort.Strings(lines)
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}

	if m.UMIErrorReadGroups > 0 {
		data := make([]float64, umi.MaxDist)
		for d := 1; d <= umi.MaxDist; d++ {
			data[d-1] = float64(m.UMIErrorsByDist[d])
		}
		plot := asciigraph.Plot(data,
			asciigraph.Height(8),
			asciigraph.Caption(fmt.Sprintf("umi error hamming distance (1..%d)", umi.MaxDist)))
		if _, err := fmt.Fprintf(w, "\n%s\n", plot); err != nil {
			return err
		}
	}
	return nil
}
