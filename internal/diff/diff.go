// internal/diff/diff.go
package diff

import (
	"sort"

	"vigil/internal/snapshot"
)

// Report classifies every path appearing in either snapshot into exactly
// one of four categories. Each slice is sorted lexicographically.
type Report struct {
	Unchanged []string
	Modified  []string
	Added     []string
	Removed   []string
}

// Compare classifies the key union of baseline and current. It is a pure
// function: no I/O, neither snapshot is mutated, and it cannot fail.
func Compare(baseline, current snapshot.Snapshot) *Report {
	r := &Report{}

	for p, base := range baseline {
		cur, ok := current[p]
		switch {
		case !ok:
			r.Removed = append(r.Removed, p)
		case cur == base:
			r.Unchanged = append(r.Unchanged, p)
		default:
			r.Modified = append(r.Modified, p)
		}
	}

	for p := range current {
		if _, ok := baseline[p]; !ok {
			r.Added = append(r.Added, p)
		}
	}

	sort.Strings(r.Unchanged)
	sort.Strings(r.Modified)
	sort.Strings(r.Added)
	sort.Strings(r.Removed)

	return r
}

// Clean reports whether the two snapshots matched exactly.
func (r *Report) Clean() bool {
	return len(r.Modified) == 0 && len(r.Added) == 0 && len(r.Removed) == 0
}

// Total is the size of the key union across both snapshots.
func (r *Report) Total() int {
	return len(r.Unchanged) + len(r.Modified) + len(r.Added) + len(r.Removed)
}
