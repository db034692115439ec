package core

import "context"

type (
	// Transactor runs fn inside a single transaction.
	// Repository calls made with the ctx handed to fn join that transaction;
	// nested calls reuse the outer one.
	Transactor interface {
		InTx(ctx context.Context, fn func(ctx context.Context) error) error
	}

	// Pinger reports whether the underlying store is reachable.
	Pinger interface {
		PingContext(ctx context.Context) error
	}

	// Store is what the storage backends hand to the services.
	Store interface {
		Transactor
		Pinger
	}
)

// LabelCount is one bar of an aggregate chart: a group label and its row count.
type LabelCount struct {
	Label string `json:"label" db:"label"`
	Count int    `json:"count" db:"count"`
}

// SplitLabelCounts returns the parallel label & count sequences charts consume.
func SplitLabelCounts(lcs []LabelCount) ([]string, []int) {
	labels := make([]string, 0, len(lcs))
	counts := make([]int, 0, len(lcs))
	for _, lc := range lcs {
		labels = append(labels, lc.Label)
		counts = append(counts, lc.Count)
	}
	return labels, counts
}
