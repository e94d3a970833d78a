package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"microvault.com/internal/domain/entity"
	"microvault.com/internal/domain/port"
	"microvault.com/internal/infrastructure/logger"
)

// DefaultCustodialAccount is the account identity the vault holds assets under
// when none is configured.
const DefaultCustodialAccount = "vault"

// VaultOptions tunes a Vault
type VaultOptions struct {
	// Account is the custodial account identity on the asset side.
	Account string
	// CompensateOnTransferFailure restores a withdrawn ledger entry when the
	// outgoing transfer fails. When false the entry stays debited.
	CompensateOnTransferFailure bool
	// TransferAsset is the asset the transfer collaborator settles. When set,
	// initializing the vault with another asset logs a warning.
	TransferAsset string
}

// Vault is a single custodial vault instance. It owns the ledger state via
// its store and serializes every operation against it.
type Vault struct {
	mu         sync.RWMutex
	store      port.VaultStore
	authorizer port.Authorizer
	transfer   port.AssetTransfer
	account    string
	compensate bool
	asset      string
	logger     logger.Logger
}

// NewVault creates a new Vault
func NewVault(
	store port.VaultStore,
	authorizer port.Authorizer,
	transfer port.AssetTransfer,
	opts VaultOptions,
	logger logger.Logger,
) *Vault {
	account := opts.Account
	if account == "" {
		account = DefaultCustodialAccount
	}

	return &Vault{
		store:      store,
		authorizer: authorizer,
		transfer:   transfer,
		account:    account,
		compensate: opts.CompensateOnTransferFailure,
		asset:      opts.TransferAsset,
		logger:     logger,
	}
}

// Account returns the custodial account identity.
func (v *Vault) Account() string {
	return v.account
}

// warnAssetMismatch logs when the vault custodies an asset the transfer
// collaborator does not settle; every transfer would then fail.
func (v *Vault) warnAssetMismatch(ctx context.Context, asset string) {
	if v.asset == "" || v.asset == asset {
		return
	}
	v.logger.LogWarning(ctx, "Vault asset differs from transfer asset",
		"vault_asset", asset,
		"transfer_asset", v.asset)
}

// CheckAsset warns if an already initialized vault custodies an asset the
// transfer collaborator does not settle.
func (v *Vault) CheckAsset(ctx context.Context) {
	cfg, err := v.Config(ctx)
	if err != nil {
		return
	}
	v.warnAssetMismatch(ctx, cfg.Asset)
}

func (v *Vault) authorize(ctx context.Context, principal string, call entity.Call, proof entity.AuthorizationProof) error {
	if err := v.authorizer.Authorize(ctx, principal, call, proof); err != nil {
		v.logger.LogWarning(ctx, "Authorization rejected",
			"principal", principal,
			"operation", call.Operation,
			"error", err.Error())
		if errors.Is(err, entity.ErrUnauthorized) {
			return err
		}
		return fmt.Errorf("%w: %w", entity.ErrUnauthorized, err)
	}
	return nil
}

// transferFailed makes sure a collaborator error carries ErrTransferFailed.
func transferFailed(err error) error {
	if errors.Is(err, entity.ErrTransferFailed) {
		return err
	}
	return fmt.Errorf("%w: %w", entity.ErrTransferFailed, err)
}

func invalidRequest(err error) error {
	return fmt.Errorf("%w: %w", entity.ErrInvalidRequest, err)
}
