package repositories

import (
	"context"

	"github.com/SscSPs/host_ledger/internal/core/domain"
)

// CollectiveReader resolves accounts and their hosts.
type CollectiveReader interface {
	FindCollectiveByID(ctx context.Context, collectiveID string) (*domain.Collective, error)
}
