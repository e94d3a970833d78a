package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"microvault.com/internal/domain/entity"
)

// Withdraw debits the user's entry and then moves amount out of custody to
// the user. The debit is persisted before the transfer is attempted; what
// happens to it when the transfer fails depends on
// VaultOptions.CompensateOnTransferFailure.
func (v *Vault) Withdraw(ctx context.Context, user string, amount decimal.Decimal, proof entity.AuthorizationProof) error {
	if user == "" {
		return invalidRequest(entity.ErrMissingUser)
	}

	// Bounded before the amount is rendered into the signed call.
	if err := entity.CheckAmount(amount); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if err := v.authorize(ctx, user, entity.NewCall(entity.OpWithdraw, user, amount.String()), proof); err != nil {
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

	if entry.Amount.LessThan(amount) {
		return fmt.Errorf("%w: %s holds %s, requested %s",
			entity.ErrInsufficientBalance, user, entry.Amount.String(), amount.String())
	}

	debited := entity.LedgerEntry{Owner: user, Amount: entry.Amount.Sub(amount)}
	if err := v.store.PutEntry(ctx, debited); err != nil {
		return err
	}

	if err := v.transfer.Transfer(ctx, cfg.Asset, v.account, user, amount); err != nil {
		err = transferFailed(err)
		return v.compensateWithdraw(ctx, entry, amount, err)
	}

	v.logger.LogInfo(ctx, "Withdrawal recorded",
		"user", user,
		"amount", amount.String(),
		"new_balance", debited.Amount.String())

	return nil
}

// compensateWithdraw handles a failed outgoing transfer after the ledger was
// already debited. original is the entry as it was before the debit.
func (v *Vault) compensateWithdraw(ctx context.Context, original entity.LedgerEntry, amount decimal.Decimal, cause error) error {
	if !v.compensate {
		v.logger.LogWarning(ctx, "Withdrawal transfer failed, ledger left debited",
			"user", original.Owner,
			"amount", amount.String(),
			"error", cause.Error())
		return cause
	}

	if err := v.store.PutEntry(ctx, original); err != nil {
		v.logger.LogError(ctx, "Failed to restore ledger entry after withdrawal transfer failure", err,
			"user", original.Owner,
			"amount", amount.String())
		return fmt.Errorf("%w; restoring ledger entry: %w", cause, err)
	}

	v.logger.LogWarning(ctx, "Withdrawal transfer failed, ledger entry restored",
		"user", original.Owner,
		"amount", amount.String(),
		"balance", original.Amount.String(),
		"error", cause.Error())

	return cause
}
