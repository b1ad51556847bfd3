package repositories

import (
	"context"
	"time"
)

// UsageReader counts billable usage of a host over [from, to).
type UsageReader interface {
	// CountActiveCollectives counts distinct hosted accounts, events and projects rolled up
	// to their parent, with at least one ledger row in the window.
	CountActiveCollectives(ctx context.Context, hostID string, from, to time.Time) (int64, error)

	// CountExpensesPaid counts distinct expenses with a paid activity in the window.
	CountExpensesPaid(ctx context.Context, hostID string, from, to time.Time) (int64, error)
}
