package usecase

import (
	"context"

	"github.com/shopspring/decimal"

	"microvault.com/internal/domain/entity"
)

// EmergencyWithdraw moves amount out of custody to the given account on the
// admin's authority. No ledger entry and no aggregate is adjusted, so after
// a drain the total value locked can exceed what the vault actually holds.
func (v *Vault) EmergencyWithdraw(ctx context.Context, to string, amount decimal.Decimal, proof entity.AuthorizationProof) error {
	if to == "" {
		return invalidRequest(entity.ErrMissingRecipient)
	}

	if err := entity.CheckAmount(amount); err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	cfg, err := v.store.LoadConfig(ctx)
	if err != nil {
		return err
	}

	if err := v.authorize(ctx, cfg.Admin, entity.NewCall(entity.OpEmergencyWithdraw, to, amount.String()), proof); err != nil {
		return err
	}

	if err := entity.CheckPositive(amount); err != nil {
		return err
	}

	if err := v.transfer.Transfer(ctx, cfg.Asset, v.account, to, amount); err != nil {
		v.logger.LogError(ctx, "Emergency withdrawal transfer failed", err,
			"to", to,
			"amount", amount.String())
		return transferFailed(err)
	}

	v.logger.LogWarning(ctx, "Emergency withdrawal executed",
		"admin", cfg.Admin,
		"to", to,
		"amount", amount.String())

	return nil
}
