package authorizer

import (
	"sync"
	"time"
)

const (
	nonceRetention = time.Hour
	nonceSweepSize = 10000
)

// NonceStore tracks used nonces to prevent replay attacks
type NonceStore struct {
	mu     sync.Mutex
	nonces map[string]time.Time
}

// NewNonceStore creates a new nonce store
func NewNonceStore() *NonceStore {
	return &NonceStore{
		nonces: make(map[string]time.Time),
	}
}

// Use records nonce and reports whether it was unused. Nonces older than the
// retention window may be reused.
func (ns *NonceStore) Use(nonce string, now time.Time) bool {
	ns.mu.Lock()
	defer ns.mu.Unlock()

	if seen, exists := ns.nonces[nonce]; exists && now.Sub(seen) <= nonceRetention {
		return false
	}

	ns.nonces[nonce] = now

	if len(ns.nonces) > nonceSweepSize {
		ns.sweep(now)
	}

	return true
}

// sweep removes nonces past the retention window
func (ns *NonceStore) sweep(now time.Time) {
	for nonce, seen := range ns.nonces {
		if now.Sub(seen) > nonceRetention {
			delete(ns.nonces, nonce)
		}
	}
}
