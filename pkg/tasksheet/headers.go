package tasksheet

import "sort"

// HeaderOptions configures header resolution for a batch of rows.
type HeaderOptions struct {
	// Preferred lists service-canonical fields that, when present in the
	// batch, appear first in this exact relative order.
	Preferred []string
	// Extra names are guaranteed a column even when absent from every row.
	Extra []string
}

// DefaultHeaderOptions returns the canonical task field ordering.
func DefaultHeaderOptions() HeaderOptions {
	return HeaderOptions{
		Preferred: []string{
			"Id",
			"Name",
			"Type",
			"StartDate",
			"EndDate",
			"ProjectId",
			"TaskDomainId",
		},
	}
}

// CollectHeaders builds the column ordering for a batch of flattened
// rows: the preferred fields present in the batch first, then the
// remaining keys in lexicographic order. The result is deterministic for
// a given batch regardless of row or key order.
func CollectHeaders(rows []FlatRow, opts HeaderOptions) []string {
	seen := make(map[string]struct{})
	for _, name := range opts.Extra {
		seen[name] = struct{}{}
	}
	for _, row := range rows {
		for key := range row {
			seen[key] = struct{}{}
		}
	}

	ordered := make([]string, 0, len(seen))
	for _, key := range opts.Preferred {
		if _, ok := seen[key]; ok {
			ordered = append(ordered, key)
			delete(seen, key)
		}
	}

	remaining := make([]string, 0, len(seen))
	for key := range seen {
		remaining = append(remaining, key)
	}
	sort.Strings(remaining)
	return append(ordered, remaining...)
}
