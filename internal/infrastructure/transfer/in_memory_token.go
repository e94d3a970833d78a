package transfer

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"microvault.com/internal/domain/entity"
	"microvault.com/internal/infrastructure/logger"
)

// Movement is one completed transfer
type Movement struct {
	Asset  string
	From   string
	To     string
	Amount decimal.Decimal
}

// InMemoryToken implements the AssetTransfer port as a single fungible token
// held in process memory. Transfers without cover are rejected.
type InMemoryToken struct {
	mu        sync.RWMutex
	asset     string
	accounts  map[string]decimal.Decimal
	movements []Movement
	logger    logger.Logger
}

// NewInMemoryToken creates a token ledger for asset
func NewInMemoryToken(asset string, logger logger.Logger) *InMemoryToken {
	return &InMemoryToken{
		asset:    asset,
		accounts: make(map[string]decimal.Decimal),
		logger:   logger,
	}
}

// Asset returns the token identifier
func (t *InMemoryToken) Asset() string {
	return t.asset
}

// Mint credits amount to account out of thin air
func (t *InMemoryToken) Mint(ctx context.Context, account string, amount decimal.Decimal) error {
	if err := entity.CheckPositive(amount); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.accounts[account] = t.balanceOf(account).Add(amount)

	t.logger.LogInfo(ctx, "Token minted",
		"asset", t.asset,
		"account", account,
		"amount", amount.String())

	return nil
}

// BalanceOf returns the token balance of account
func (t *InMemoryToken) BalanceOf(account string) decimal.Decimal {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.balanceOf(account)
}

func (t *InMemoryToken) balanceOf(account string) decimal.Decimal {
	if b, ok := t.accounts[account]; ok {
		return b
	}
	return decimal.Zero
}

// Movements returns a copy of every completed transfer, oldest first
func (t *InMemoryToken) Movements() []Movement {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Movement, len(t.movements))
	copy(out, t.movements)
	return out
}

// Transfer moves amount of asset from one account to another
func (t *InMemoryToken) Transfer(ctx context.Context, asset, from, to string, amount decimal.Decimal) error {
	if asset != t.asset {
		return fmt.Errorf("%w: unknown asset %q", entity.ErrTransferFailed, asset)
	}
	if !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", entity.ErrTransferFailed, amount.String())
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	available := t.balanceOf(from)
	if available.LessThan(amount) {
		t.logger.LogWarning(ctx, "Transfer rejected",
			"asset", asset,
			"from", from,
			"to", to,
			"amount", amount.String(),
			"available", available.String())
		return fmt.Errorf("%w: %s holds %s of %s, needs %s",
			entity.ErrTransferFailed, from, available.String(), asset, amount.String())
	}

	t.accounts[from] = available.Sub(amount)
	t.accounts[to] = t.balanceOf(to).Add(amount)
	t.movements = append(t.movements, Movement{Asset: asset, From: from, To: to, Amount: amount})

	t.logger.LogInfo(ctx, "Transfer completed",
		"asset", asset,
		"from", from,
		"to", to,
		"amount", amount.String())

	return nil
}
