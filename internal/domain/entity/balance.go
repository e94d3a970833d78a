package entity

import "github.com/shopspring/decimal"

// VaultConfig holds the identities fixed by initialize
type VaultConfig struct {
	Admin string `json:"admin"`
	Asset string `json:"asset"`
}

// LedgerEntry is the custodied amount recorded for one owner.
// The zero value of Amount means no deposit on record.
type LedgerEntry struct {
	Owner  string
	Amount decimal.Decimal
}

// ZeroEntry returns the entry an absent owner is treated as having.
func ZeroEntry(owner string) LedgerEntry {
	return LedgerEntry{Owner: owner, Amount: decimal.Zero}
}

// BalanceResponse represents the balance response for a user
type BalanceResponse struct {
	User   string `json:"user"`
	Amount string `json:"amount"`
}

// TVLResponse represents the aggregate view over the whole ledger
type TVLResponse struct {
	TotalValueLocked string `json:"total_value_locked"`
}
