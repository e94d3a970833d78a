package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microvault.com/internal/domain/entity"
	"microvault.com/internal/infrastructure/logger"
)

func TestBoltStore_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vault.db")

	store, err := OpenBoltStore(path, logger.NewLogger())
	require.NoError(t, err)
	require.NoError(t, store.InitializeConfig(ctx, entity.VaultConfig{Admin: "A", Asset: "T"}))
	require.NoError(t, store.PutEntry(ctx, entity.LedgerEntry{Owner: "u1", Amount: decimal.NewFromInt(42)}))
	require.NoError(t, store.Close())

	store, err = OpenBoltStore(path, logger.NewLogger())
	require.NoError(t, err)
	defer store.Close()

	cfg, err := store.LoadConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "A", cfg.Admin)
	assert.Equal(t, "T", cfg.Asset)

	entry, err := store.GetEntryOrZero(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "42", entry.Amount.String())

	err = store.InitializeConfig(ctx, entity.VaultConfig{Admin: "B", Asset: "X"})
	assert.ErrorIs(t, err, entity.ErrAlreadyInitialized)
}

func TestOpenBoltStore_BadPath(t *testing.T) {
	_, err := OpenBoltStore(filepath.Join(t.TempDir(), "missing", "vault.db"), logger.NewLogger())
	assert.Error(t, err)
}

func TestBoltStore_TotalValueLockedSumsBucket(t *testing.T) {
	ctx := context.Background()
	store, err := OpenBoltStore(filepath.Join(t.TempDir(), "vault.db"), logger.NewLogger())
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.PutEntry(ctx, entity.LedgerEntry{Owner: "u1", Amount: decimal.NewFromInt(7)}))
	require.NoError(t, store.PutEntry(ctx, entity.LedgerEntry{Owner: "u2", Amount: decimal.NewFromInt(3)}))
	require.NoError(t, store.PutEntry(ctx, entity.LedgerEntry{Owner: "u3", Amount: decimal.Zero}))

	entries, err := store.entries(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	tvl, err := store.TotalValueLocked(ctx)
	require.NoError(t, err)
	assert.Equal(t, "10", tvl.String())
}
