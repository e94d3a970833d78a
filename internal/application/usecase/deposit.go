package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"microvault.com/internal/domain/entity"
)

// Deposit moves amount from user into custody and credits the user's entry.
// The ledger is credited only after the transfer succeeded.
func (v *Vault) Deposit(ctx context.Context, user string, amount decimal.Decimal, proof entity.AuthorizationProof) error {
	if user == "" {
		return invalidRequest(entity.ErrMissingUser)
	}

	// Bounded before the amount is rendered into the signed call.
	if err := entity.CheckAmount(amount); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.authorize(ctx, user, entity.NewCall(entity.OpDeposit, user, amount.String()), proof); err != nil {
		return err
	}

	if err := entity.CheckPositive(amount); err != nil {
		return err
	}

	cfg, err := v.store.LoadConfig(ctx)
	if err != nil {
		return err
	}

	entry, err := v.store.GetEntryOrZero(ctx, user)
	if err != nil {
		return err
	}

	credited := entry.Amount.Add(amount)
	if credited.GreaterThan(entity.MaxAmount) {
		return fmt.Errorf("%w: balance of %s would exceed 128-bit range", entity.ErrInvalidAmount, user)
	}

	if err := v.transfer.Transfer(ctx, cfg.Asset, user, v.account, amount); err != nil {
		v.logger.LogError(ctx, "Deposit transfer failed", err,
			"user", user,
			"amount", amount.String())
		return transferFailed(err)
	}

	entry.Amount = credited
	if err := v.store.PutEntry(ctx, entry); err != nil {
		// The asset is already in custody at this point.
		v.logger.LogError(ctx, "Failed to credit ledger after deposit transfer", err,
			"user", user,
			"amount", amount.String())
		return err
	}

	v.logger.LogInfo(ctx, "Deposit recorded",
		"user", user,
		"amount", amount.String(),
		"new_balance", credited.String())

	return nil
}
