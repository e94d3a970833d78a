package authorizer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"github.com/google/uuid"

	"microvault.com/internal/domain/entity"
)

// Sign computes the hex HMAC-SHA256 signature of a call.
// Format: timestamp + "\n" + nonce + "\n" + principal + "\n" + canonical call
func Sign(secret, principal string, call entity.Call, timestamp, nonce string) string {
	message := timestamp + "\n" + nonce + "\n" + principal + "\n" + call.Canonical()

	mac := hmac.New(sha256.New, []byte(secret))
	// hash.Hash writes never fail
	_, _ = mac.Write([]byte(message))

	return hex.EncodeToString(mac.Sum(nil))
}

// NewProof signs call as principal at the given time with a fresh random nonce.
func NewProof(secret, principal string, call entity.Call, at time.Time) entity.AuthorizationProof {
	timestamp := strconv.FormatInt(at.Unix(), 10)
	nonce := uuid.New().String()

	return entity.AuthorizationProof{
		Timestamp: timestamp,
		Nonce:     nonce,
		Signature: Sign(secret, principal, call, timestamp, nonce),
	}
}
