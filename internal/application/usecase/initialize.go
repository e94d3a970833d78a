package usecase

import (
	"context"
	"errors"

	"microvault.com/internal/domain/entity"
)

// Initialize fixes the admin and asset of the vault. It can succeed once.
func (v *Vault) Initialize(ctx context.Context, req entity.InitializeRequest, proof entity.AuthorizationProof) error {
	if err := req.Validate(); err != nil {
		return invalidRequest(err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	_, err := v.store.LoadConfig(ctx)
	switch {
	case err == nil:
		return entity.ErrAlreadyInitialized
	case !errors.Is(err, entity.ErrNotInitialized):
		return err
	}

	if err := v.authorize(ctx, req.Admin, req.Call(), proof); err != nil {
		return err
	}

	cfg := entity.VaultConfig{Admin: req.Admin, Asset: req.Asset}
	if err := v.store.InitializeConfig(ctx, cfg); err != nil {
		return err
	}

	v.logger.LogInfo(ctx, "Vault initialized",
		"admin", cfg.Admin,
		"asset", cfg.Asset,
		"account", v.account)
	v.warnAssetMismatch(ctx, cfg.Asset)

	return nil
}
