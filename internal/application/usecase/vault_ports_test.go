package usecase

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microvault.com/internal/domain/entity"
	"microvault.com/internal/infrastructure/logger"
)

// mockStore is a mock implementation of VaultStore
type mockStore struct {
	initializeConfigFunc func(ctx context.Context, cfg entity.VaultConfig) error
	loadConfigFunc       func(ctx context.Context) (*entity.VaultConfig, error)
	getEntryFunc         func(ctx context.Context, owner string) (entity.LedgerEntry, error)
	putEntryFunc         func(ctx context.Context, entry entity.LedgerEntry) error
	totalFunc            func(ctx context.Context) (decimal.Decimal, error)
	puts                 int
}

func (m *mockStore) InitializeConfig(ctx context.Context, cfg entity.VaultConfig) error {
	if m.initializeConfigFunc != nil {
		return m.initializeConfigFunc(ctx, cfg)
	}
	return nil
}

func (m *mockStore) LoadConfig(ctx context.Context) (*entity.VaultConfig, error) {
	if m.loadConfigFunc != nil {
		return m.loadConfigFunc(ctx)
	}
	return &entity.VaultConfig{Admin: adminID, Asset: assetID}, nil
}

func (m *mockStore) GetEntryOrZero(ctx context.Context, owner string) (entity.LedgerEntry, error) {
	if m.getEntryFunc != nil {
		return m.getEntryFunc(ctx, owner)
	}
	return entity.ZeroEntry(owner), nil
}

func (m *mockStore) PutEntry(ctx context.Context, entry entity.LedgerEntry) error {
	m.puts++
	if m.putEntryFunc != nil {
		return m.putEntryFunc(ctx, entry)
	}
	return nil
}

func (m *mockStore) TotalValueLocked(ctx context.Context) (decimal.Decimal, error) {
	if m.totalFunc != nil {
		return m.totalFunc(ctx)
	}
	return decimal.Zero, nil
}

// mockAuthorizer is a mock implementation of Authorizer
type mockAuthorizer struct {
	authorizeFunc func(ctx context.Context, principal string, call entity.Call, proof entity.AuthorizationProof) error
}

func (m *mockAuthorizer) Authorize(ctx context.Context, principal string, call entity.Call, proof entity.AuthorizationProof) error {
	if m.authorizeFunc != nil {
		return m.authorizeFunc(ctx, principal, call, proof)
	}
	return nil
}

func notInitialized(ctx context.Context) (*entity.VaultConfig, error) {
	return nil, entity.ErrNotInitialized
}

func TestVault_PortFailures(t *testing.T) {
	readErr := errors.New("read error")
	writeErr := errors.New("write error")

	tests := []struct {
		name          string
		store         *mockStore
		authErr       error
		call          func(v *Vault) error
		wantErr       error
		errContains   string
		wantTransfers int
		wantPuts      int
	}{
		{
			name: "initialize propagates config read error",
			store: &mockStore{loadConfigFunc: func(ctx context.Context) (*entity.VaultConfig, error) {
				return nil, readErr
			}},
			call: func(v *Vault) error {
				return v.Initialize(context.Background(), entity.InitializeRequest{Admin: adminID, Asset: assetID}, entity.AuthorizationProof{})
			},
			wantErr: readErr,
		},
		{
			name: "initialize propagates config write error",
			store: &mockStore{
				loadConfigFunc: notInitialized,
				initializeConfigFunc: func(ctx context.Context, cfg entity.VaultConfig) error {
					return writeErr
				},
			},
			call: func(v *Vault) error {
				return v.Initialize(context.Background(), entity.InitializeRequest{Admin: adminID, Asset: assetID}, entity.AuthorizationProof{})
			},
			wantErr: writeErr,
		},
		{
			name:    "authorizer error is reported as unauthorized",
			store:   &mockStore{},
			authErr: errors.New("clock skew"),
			call: func(v *Vault) error {
				return v.Deposit(context.Background(), userID, amount(10), entity.AuthorizationProof{})
			},
			wantErr:     entity.ErrUnauthorized,
			errContains: "clock skew",
		},
		{
			name: "deposit config read error moves nothing",
			store: &mockStore{loadConfigFunc: func(ctx context.Context) (*entity.VaultConfig, error) {
				return nil, readErr
			}},
			call: func(v *Vault) error {
				return v.Deposit(context.Background(), userID, amount(10), entity.AuthorizationProof{})
			},
			wantErr: readErr,
		},
		{
			name: "deposit entry read error moves nothing",
			store: &mockStore{getEntryFunc: func(ctx context.Context, owner string) (entity.LedgerEntry, error) {
				return entity.LedgerEntry{}, readErr
			}},
			call: func(v *Vault) error {
				return v.Deposit(context.Background(), userID, amount(10), entity.AuthorizationProof{})
			},
			wantErr: readErr,
		},
		{
			name: "deposit credit failure after transfer is returned",
			store: &mockStore{putEntryFunc: func(ctx context.Context, entry entity.LedgerEntry) error {
				return writeErr
			}},
			call: func(v *Vault) error {
				return v.Deposit(context.Background(), userID, amount(10), entity.AuthorizationProof{})
			},
			wantErr:       writeErr,
			wantTransfers: 1,
			wantPuts:      1,
		},
		{
			name: "withdraw debit failure moves nothing",
			store: &mockStore{
				getEntryFunc: func(ctx context.Context, owner string) (entity.LedgerEntry, error) {
					return entity.LedgerEntry{Owner: owner, Amount: amount(100)}, nil
				},
				putEntryFunc: func(ctx context.Context, entry entity.LedgerEntry) error {
					return writeErr
				},
			},
			call: func(v *Vault) error {
				return v.Withdraw(context.Background(), userID, amount(10), entity.AuthorizationProof{})
			},
			wantErr:  writeErr,
			wantPuts: 1,
		},
		{
			name: "emergency withdraw before initialize moves nothing",
			store: &mockStore{loadConfigFunc: notInitialized},
			call: func(v *Vault) error {
				return v.EmergencyWithdraw(context.Background(), rescueID, amount(10), entity.AuthorizationProof{})
			},
			wantErr: entity.ErrNotInitialized,
		},
		{
			name: "total value locked propagates read error",
			store: &mockStore{totalFunc: func(ctx context.Context) (decimal.Decimal, error) {
				return decimal.Zero, readErr
			}},
			call: func(v *Vault) error {
				_, err := v.TotalValueLocked(context.Background())
				return err
			},
			wantErr: readErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transfers := 0
			tr := &mockTransfer{
				transferFunc: func(ctx context.Context, asset, from, to string, amount decimal.Decimal) error {
					transfers++
					return nil
				},
			}
			auth := &mockAuthorizer{
				authorizeFunc: func(ctx context.Context, principal string, call entity.Call, proof entity.AuthorizationProof) error {
					return tt.authErr
				},
			}
			vault := NewVault(tt.store, auth, tr, VaultOptions{CompensateOnTransferFailure: true}, logger.NewLogger())

			err := tt.call(vault)
			require.ErrorIs(t, err, tt.wantErr)
			if tt.errContains != "" {
				assert.Contains(t, err.Error(), tt.errContains)
			}
			assert.Equal(t, tt.wantTransfers, transfers)
			assert.Equal(t, tt.wantPuts, tt.store.puts)
		})
	}
}

func TestVault_AuthorizesExactCall(t *testing.T) {
	var got []entity.Call
	auth := &mockAuthorizer{
		authorizeFunc: func(ctx context.Context, principal string, call entity.Call, proof entity.AuthorizationProof) error {
			got = append(got, call)
			return nil
		},
	}
	vault := NewVault(&mockStore{
		getEntryFunc: func(ctx context.Context, owner string) (entity.LedgerEntry, error) {
			return entity.LedgerEntry{Owner: owner, Amount: amount(100)}, nil
		},
	}, auth, &mockTransfer{}, VaultOptions{}, logger.NewLogger())

	ctx := context.Background()
	require.NoError(t, vault.Deposit(ctx, userID, amount(10), entity.AuthorizationProof{}))
	require.NoError(t, vault.Withdraw(ctx, userID, decimal.RequireFromString("20.00"), entity.AuthorizationProof{}))
	require.NoError(t, vault.EmergencyWithdraw(ctx, rescueID, amount(5), entity.AuthorizationProof{}))

	require.Len(t, got, 3)
	assert.Equal(t, "deposit\nU\n10", got[0].Canonical())
	assert.Equal(t, "withdraw\nU\n20", got[1].Canonical())
	assert.Equal(t, "emergency_withdraw\nR\n5", got[2].Canonical())
}

func TestVault_AssetMismatchWarning(t *testing.T) {
	tests := []struct {
		name          string
		transferAsset string
		wantWarning   bool
	}{
		{name: "matching asset", transferAsset: assetID},
		{name: "transfer asset unset", transferAsset: ""},
		{name: "different asset", transferAsset: "USDC", wantWarning: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			var buf bytes.Buffer
			store := &mockStore{loadConfigFunc: notInitialized}
			vault := NewVault(store, &mockAuthorizer{}, &mockTransfer{}, VaultOptions{TransferAsset: tt.transferAsset}, logger.New(&buf, slog.LevelDebug))

			require.NoError(t, vault.Initialize(ctx, entity.InitializeRequest{Admin: adminID, Asset: assetID}, entity.AuthorizationProof{}))
			if tt.wantWarning {
				assert.Contains(t, buf.String(), "Vault asset differs from transfer asset")
				assert.Contains(t, buf.String(), `"transfer_asset":"USDC"`)
			} else {
				assert.NotContains(t, buf.String(), "differs")
			}

			// A restarted process checks the stored config the same way.
			buf.Reset()
			store.loadConfigFunc = nil
			vault.CheckAsset(ctx)
			assert.Equal(t, tt.wantWarning, bytes.Contains(buf.Bytes(), []byte("Vault asset differs from transfer asset")))
		})
	}
}

func TestVault_CheckAssetBeforeInitialize(t *testing.T) {
	var buf bytes.Buffer
	vault := NewVault(&mockStore{loadConfigFunc: notInitialized}, &mockAuthorizer{}, &mockTransfer{}, VaultOptions{TransferAsset: "USDC"}, logger.New(&buf, slog.LevelDebug))

	vault.CheckAsset(context.Background())
	assert.Empty(t, buf.String())
}
