package diff

import (
	"crypto/sha256"
	"testing"

	"vigil/internal/snapshot"

	"github.com/stretchr/testify/assert"
)

func digestOf(content string) snapshot.Digest {
	return snapshot.Digest(sha256.Sum256([]byte(content)))
}

func TestCompare(t *testing.T) {
	hello := digestOf("hello")
	world := digestOf("world")
	changed := digestOf("hello!")

	tests := []struct {
		name     string
		baseline snapshot.Snapshot
		current  snapshot.Snapshot
		want     Report
	}{
		{
			name:     "identical snapshots",
			baseline: snapshot.Snapshot{"a.txt": hello, "b.txt": world},
			current:  snapshot.Snapshot{"a.txt": hello, "b.txt": world},
			want:     Report{Unchanged: []string{"a.txt", "b.txt"}},
		},
		{
			name:     "modified file",
			baseline: snapshot.Snapshot{"a.txt": hello, "b.txt": world},
			current:  snapshot.Snapshot{"a.txt": changed, "b.txt": world},
			want: Report{
				Unchanged: []string{"b.txt"},
				Modified:  []string{"a.txt"},
			},
		},
		{
			name:     "added and removed",
			baseline: snapshot.Snapshot{"a.txt": hello, "b.txt": world},
			current:  snapshot.Snapshot{"a.txt": hello, "c.txt": digestOf("new")},
			want: Report{
				Unchanged: []string{"a.txt"},
				Added:     []string{"c.txt"},
				Removed:   []string{"b.txt"},
			},
		},
		{
			name:     "both empty",
			baseline: snapshot.Snapshot{},
			current:  snapshot.Snapshot{},
			want:     Report{},
		},
		{
			name:     "baseline empty",
			baseline: snapshot.Snapshot{},
			current:  snapshot.Snapshot{"a.txt": hello},
			want:     Report{Added: []string{"a.txt"}},
		},
		{
			name:     "current empty",
			baseline: snapshot.Snapshot{"a.txt": hello},
			current:  snapshot.Snapshot{},
			want:     Report{Removed: []string{"a.txt"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compare(tt.baseline, tt.current)
			assert.Equal(t, tt.want.Unchanged, got.Unchanged)
			assert.Equal(t, tt.want.Modified, got.Modified)
			assert.Equal(t, tt.want.Added, got.Added)
			assert.Equal(t, tt.want.Removed, got.Removed)
		})
	}
}

// The four categories must partition the key union exactly: every path in
// either snapshot lands in exactly one category.
func TestComparePartition(t *testing.T) {
	baseline := snapshot.Snapshot{
		"a.txt":     digestOf("a"),
		"b.txt":     digestOf("b"),
		"sub/c.txt": digestOf("c"),
		"sub/d.txt": digestOf("d"),
	}
	current := snapshot.Snapshot{
		"a.txt":     digestOf("a"),
		"b.txt":     digestOf("b2"),
		"sub/d.txt": digestOf("d"),
		"e.txt":     digestOf("e"),
	}

	report := Compare(baseline, current)

	union := make(map[string]bool)
	for p := range baseline {
		union[p] = true
	}
	for p := range current {
		union[p] = true
	}

	seen := make(map[string]int)
	for _, category := range [][]string{report.Unchanged, report.Modified, report.Added, report.Removed} {
		for _, p := range category {
			seen[p]++
		}
	}

	assert.Equal(t, len(union), report.Total())
	for p := range union {
		assert.Equal(t, 1, seen[p], "path %s must appear in exactly one category", p)
	}
	for p := range seen {
		assert.True(t, union[p], "path %s must come from one of the snapshots", p)
	}
}

func TestCompareDoesNotMutateInputs(t *testing.T) {
	baseline := snapshot.Snapshot{"a.txt": digestOf("a")}
	current := snapshot.Snapshot{"b.txt": digestOf("b")}

	Compare(baseline, current)

	assert.Len(t, baseline, 1)
	assert.Len(t, current, 1)
	assert.Contains(t, baseline, "a.txt")
	assert.Contains(t, current, "b.txt")
}

func TestReportClean(t *testing.T) {
	assert.True(t, (&Report{Unchanged: []string{"a"}}).Clean())
	assert.False(t, (&Report{Modified: []string{"a"}}).Clean())
	assert.False(t, (&Report{Added: []string{"a"}}).Clean())
	assert.False(t, (&Report{Removed: []string{"a"}}).Clean())
}
