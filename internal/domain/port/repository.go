package port

import (
	"context"

	"github.com/shopspring/decimal"

	"microvault.com/internal/domain/entity"
)

// VaultStore is the port for the persisted vault state: the admin and asset
// records plus the ledger mapping.
type VaultStore interface {
	// InitializeConfig stores cfg and resets the ledger to empty. It fails
	// with entity.ErrAlreadyInitialized if a config is already stored.
	InitializeConfig(ctx context.Context, cfg entity.VaultConfig) error
	// LoadConfig fails with entity.ErrNotInitialized if nothing is stored.
	LoadConfig(ctx context.Context) (*entity.VaultConfig, error)
	// GetEntryOrZero never reports a missing owner; absence is a zero entry.
	GetEntryOrZero(ctx context.Context, owner string) (entity.LedgerEntry, error)
	PutEntry(ctx context.Context, entry entity.LedgerEntry) error
	TotalValueLocked(ctx context.Context) (decimal.Decimal, error)
}
