package repository

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"microvault.com/internal/domain/entity"
	"microvault.com/internal/domain/port"
	"microvault.com/internal/infrastructure/logger"
)

// InMemoryStore implements the VaultStore port in process memory. It keeps
// a running total so TotalValueLocked does not walk the ledger.
type InMemoryStore struct {
	mu       sync.RWMutex
	config   *entity.VaultConfig
	balances map[string]decimal.Decimal
	total    decimal.Decimal
	logger   logger.Logger
}

// NewInMemoryStore creates a new in-memory vault store
func NewInMemoryStore(logger logger.Logger) port.VaultStore {
	return &InMemoryStore{
		balances: make(map[string]decimal.Decimal),
		total:    decimal.Zero,
		logger:   logger,
	}
}

// InitializeConfig stores the config and starts an empty ledger
func (s *InMemoryStore) InitializeConfig(ctx context.Context, cfg entity.VaultConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.config != nil {
		return entity.ErrAlreadyInitialized
	}

	s.config = &cfg
	s.balances = make(map[string]decimal.Decimal)
	s.total = decimal.Zero

	return nil
}

// LoadConfig returns a copy of the stored config
func (s *InMemoryStore) LoadConfig(ctx context.Context) (*entity.VaultConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.config == nil {
		return nil, entity.ErrNotInitialized
	}

	cfg := *s.config
	return &cfg, nil
}

// GetEntryOrZero returns the owner's entry, or a zero entry if there is none
func (s *InMemoryStore) GetEntryOrZero(ctx context.Context, owner string) (entity.LedgerEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	amount, ok := s.balances[owner]
	if !ok {
		return entity.ZeroEntry(owner), nil
	}
	return entity.LedgerEntry{Owner: owner, Amount: amount}, nil
}

// PutEntry overwrites the owner's entry and adjusts the running total
func (s *InMemoryStore) PutEntry(ctx context.Context, entry entity.LedgerEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.balances[entry.Owner]
	if !ok {
		previous = decimal.Zero
	}

	s.balances[entry.Owner] = entry.Amount
	s.total = s.total.Sub(previous).Add(entry.Amount)

	s.logger.LogDebug(ctx, "Ledger entry updated",
		"owner", entry.Owner,
		"previous", previous.String(),
		"amount", entry.Amount.String())

	return nil
}

// TotalValueLocked returns the running total
func (s *InMemoryStore) TotalValueLocked(ctx context.Context) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.total, nil
}
