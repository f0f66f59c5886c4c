package diff

import (
	"slices"
	"strings"

	"github.com/tbxark/slotagent/types"
)

// Compute returns the changes that turn before into after. Nil values are
// treated as absent on both sides, values equal under types.Equal are
// omitted, and entries are sorted by name.
func Compute(before, after map[string]any) []types.DiffEntry {
	entries := make([]types.DiffEntry, 0)

	for name, newVal := range after {
		if newVal == nil {
			continue
		}
		oldVal, exists := before[name]
		switch {
		case !exists || oldVal == nil:
			entries = append(entries, types.DiffEntry{Name: name, Operation: types.OperationAdded, Value: newVal})
		case !types.Equal(oldVal, newVal):
			entries = append(entries, types.DiffEntry{Name: name, Operation: types.OperationChanged, Value: newVal})
		}
	}

	for name, oldVal := range before {
		if oldVal == nil {
			continue
		}
		if newVal, exists := after[name]; !exists || newVal == nil {
			entries = append(entries, types.DiffEntry{Name: name, Operation: types.OperationDeleted, Value: oldVal})
		}
	}

	slices.SortFunc(entries, func(a, b types.DiffEntry) int {
		return strings.Compare(a.Name, b.Name)
	})
	return entries
}

// Only keeps the entries whose name is accepted by keep.
func Only(entries []types.DiffEntry, keep func(name string) bool) []types.DiffEntry {
	out := make([]types.DiffEntry, 0, len(entries))
	for _, e := range entries {
		if keep(e.Name) {
			out = append(out, e)
		}
	}
	return out
}

// Group splits entries by operation, preserving their order.
func Group(entries []types.DiffEntry) map[types.Operation][]types.DiffEntry {
	groups := make(map[types.Operation][]types.DiffEntry, 3)
	for _, e := range entries {
		groups[e.Operation] = append(groups[e.Operation], e)
	}
	return groups
}
