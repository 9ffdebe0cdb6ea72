// Package report aggregates run statistics for the summary output.
package report

import (
	"fmt"
	"sort"

	"slimbox/internal/processor"
	"slimbox/internal/tui"
	"slimbox/pkg/imgutil"
)

// Stats collects run-level counters.
type Stats struct {
	Candidates int
	Converted  int
	Skipped    int
	Failed     int
	RolledBack int
	DBUpdated  int
	BytesSaved int64
}

// FromSummary lifts the processor's counters; DBUpdated is filled in after
// the batch commits.
func FromSummary(s processor.Summary) Stats {
	return Stats{
		Candidates: s.Candidates,
		Converted:  s.Converted,
		Skipped:    s.Skipped,
		Failed:     s.Failed,
		RolledBack: s.RolledBack,
		BytesSaved: s.BytesSaved,
	}
}

// SummaryRows renders the stats for the summary table.
func SummaryRows(s Stats, dryRun, skipDB bool) []tui.SummaryRow {
	convertedLabel := "Converted"
	savedLabel := "Space saved"
	if dryRun {
		convertedLabel = "Would convert"
		savedLabel = "Space saved (projected)"
	}

	rows := []tui.SummaryRow{
		{Label: "Candidates", Value: fmt.Sprintf("%d", s.Candidates)},
		{Label: convertedLabel, Value: fmt.Sprintf("%d", s.Converted)},
		{Label: "Skipped (already webp)", Value: fmt.Sprintf("%d", s.Skipped)},
		{Label: "Failed", Value: fmt.Sprintf("%d", s.Failed)},
	}
	if s.RolledBack > 0 {
		rows = append(rows, tui.SummaryRow{Label: "Rolled back", Value: fmt.Sprintf("%d", s.RolledBack)})
	}
	if !dryRun && !skipDB {
		rows = append(rows, tui.SummaryRow{Label: "Database rows updated", Value: fmt.Sprintf("%d", s.DBUpdated)})
	}
	rows = append(rows, tui.SummaryRow{Label: savedLabel, Value: HumanBytes(s.BytesSaved)})
	return rows
}

// Distribution counts candidates per detected format.
type Distribution struct {
	counts map[imgutil.Kind]int
	bytes  int64
}

func NewDistribution() *Distribution {
	return &Distribution{counts: make(map[imgutil.Kind]int)}
}

func (d *Distribution) Add(kind imgutil.Kind, size int64) {
	d.counts[kind]++
	d.bytes += size
}

func (d *Distribution) TotalBytes() int64 { return d.bytes }

// Lines returns "format: count" lines sorted by descending count.
func (d *Distribution) Lines() []string {
	type entry struct {
		kind  imgutil.Kind
		count int
	}
	entries := make([]entry, 0, len(d.counts))
	for kind, count := range d.counts {
		entries = append(entries, entry{kind, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return entries[i].kind < entries[j].kind
	})

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s: %d", e.kind, e.count))
	}
	return lines
}

// HumanBytes formats a byte count for the summary. Negative values mean the
// outputs grew.
func HumanBytes(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%s%.2f MB", sign, float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%s%.1f KB", sign, float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%s%d B", sign, n)
	}
}
