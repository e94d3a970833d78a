package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"microvault.com/internal/domain/entity"
)

// Balance returns the recorded amount for user, zero if none.
func (v *Vault) Balance(ctx context.Context, user string) (decimal.Decimal, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	entry, err := v.store.GetEntryOrZero(ctx, user)
	if err != nil {
		return decimal.Zero, err
	}
	return entry.Amount, nil
}

// TotalValueLocked returns the sum of every ledger entry.
func (v *Vault) TotalValueLocked(ctx context.Context) (decimal.Decimal, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.store.TotalValueLocked(ctx)
}

// Config returns the admin and asset fixed at initialization.
func (v *Vault) Config(ctx context.Context) (*entity.VaultConfig, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.store.LoadConfig(ctx)
}
