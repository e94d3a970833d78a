package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	bolt "go.etcd.io/bbolt"

	"microvault.com/internal/domain/entity"
	"microvault.com/internal/infrastructure/logger"
)

var (
	configBucket = []byte("config")
	ledgerBucket = []byte("ledger")

	adminKey = []byte("admin")
	assetKey = []byte("asset")
)

// BoltStore implements the VaultStore port on a bbolt file. Admin and asset
// live in the config bucket, the ledger mapping in the ledger bucket with
// owner keys and base-10 amount values.
type BoltStore struct {
	db     *bolt.DB
	logger logger.Logger
}

// OpenBoltStore opens or creates the store at path
func OpenBoltStore(path string, logger logger.Logger) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt store %s: %w", path, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(configBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(ledgerBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to prepare bolt buckets: %w", err)
	}

	return &BoltStore{db: db, logger: logger}, nil
}

// Close releases the underlying file
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// InitializeConfig stores the config and replaces the ledger with an empty one
func (s *BoltStore) InitializeConfig(ctx context.Context, cfg entity.VaultConfig) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(configBucket)
		if b.Get(adminKey) != nil {
			return entity.ErrAlreadyInitialized
		}

		if err := b.Put(adminKey, []byte(cfg.Admin)); err != nil {
			return err
		}
		if err := b.Put(assetKey, []byte(cfg.Asset)); err != nil {
			return err
		}

		if err := tx.DeleteBucket(ledgerBucket); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(ledgerBucket)
		return err
	})
}

// LoadConfig reads admin and asset
func (s *BoltStore) LoadConfig(ctx context.Context) (*entity.VaultConfig, error) {
	var cfg *entity.VaultConfig

	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(configBucket)
		admin := b.Get(adminKey)
		if admin == nil {
			return entity.ErrNotInitialized
		}
		cfg = &entity.VaultConfig{
			Admin: string(admin),
			Asset: string(b.Get(assetKey)),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// GetEntryOrZero returns the owner's entry, or a zero entry if there is none
func (s *BoltStore) GetEntryOrZero(ctx context.Context, owner string) (entity.LedgerEntry, error) {
	entry := entity.ZeroEntry(owner)

	err := s.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(ledgerBucket).Get([]byte(owner))
		if raw == nil {
			return nil
		}
		amount, err := decodeAmount(raw)
		if err != nil {
			return fmt.Errorf("corrupt ledger entry for %s: %w", owner, err)
		}
		entry.Amount = amount
		return nil
	})

	return entry, err
}

// PutEntry overwrites the owner's entry
func (s *BoltStore) PutEntry(ctx context.Context, entry entity.LedgerEntry) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(ledgerBucket).Put([]byte(entry.Owner), []byte(entry.Amount.String()))
	})
	if err != nil {
		s.logger.LogError(ctx, "Failed to persist ledger entry", err,
			"owner", entry.Owner,
			"amount", entry.Amount.String())
		return fmt.Errorf("failed to persist ledger entry: %w", err)
	}

	s.logger.LogDebug(ctx, "Ledger entry persisted",
		"owner", entry.Owner,
		"amount", entry.Amount.String())

	return nil
}

// entries returns every stored entry
func (s *BoltStore) entries(ctx context.Context) ([]entity.LedgerEntry, error) {
	var entries []entity.LedgerEntry

	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(ledgerBucket).ForEach(func(k, v []byte) error {
			amount, err := decodeAmount(v)
			if err != nil {
				return fmt.Errorf("corrupt ledger entry for %s: %w", k, err)
			}
			entries = append(entries, entity.LedgerEntry{Owner: string(k), Amount: amount})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// TotalValueLocked sums the ledger bucket
func (s *BoltStore) TotalValueLocked(ctx context.Context) (decimal.Decimal, error) {
	entries, err := s.entries(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Amount)
	}
	return total, nil
}

func decodeAmount(raw []byte) (decimal.Decimal, error) {
	return decimal.NewFromString(string(raw))
}
