package authorizer

import (
	"context"
	"crypto/hmac"
	"fmt"
	"strconv"
	"time"

	"microvault.com/internal/domain/entity"
	"microvault.com/internal/domain/port"
	"microvault.com/internal/infrastructure/logger"
)

// HMACAuthorizer implements the Authorizer port with one shared HMAC-SHA256
// secret per principal.
type HMACAuthorizer struct {
	secrets            map[string]string
	nonceStore         *NonceStore
	timestampTolerance time.Duration
	now                func() time.Time
	logger             logger.Logger
}

// NewHMACAuthorizer creates a new HMAC authorizer. secrets maps principal
// identities to their signing secrets.
func NewHMACAuthorizer(
	secrets map[string]string,
	timestampTolerance time.Duration,
	logger logger.Logger,
) port.Authorizer {
	return newHMACAuthorizer(secrets, timestampTolerance, time.Now, logger)
}

func newHMACAuthorizer(
	secrets map[string]string,
	timestampTolerance time.Duration,
	now func() time.Time,
	logger logger.Logger,
) *HMACAuthorizer {
	copied := make(map[string]string, len(secrets))
	for principal, secret := range secrets {
		copied[principal] = secret
	}

	return &HMACAuthorizer{
		secrets:            copied,
		nonceStore:         NewNonceStore(),
		timestampTolerance: timestampTolerance,
		now:                now,
		logger:             logger,
	}
}

// Authorize checks that proof is principal's fresh, unreplayed signature
// over call.
func (a *HMACAuthorizer) Authorize(ctx context.Context, principal string, call entity.Call, proof entity.AuthorizationProof) error {
	secret, ok := a.secrets[principal]
	if !ok || secret == "" {
		return fmt.Errorf("%w: unknown principal %q", entity.ErrUnauthorized, principal)
	}

	if proof.Timestamp == "" {
		return fmt.Errorf("%w: missing X-Timestamp header", entity.ErrUnauthorized)
	}
	if proof.Nonce == "" {
		return fmt.Errorf("%w: missing X-Nonce header", entity.ErrUnauthorized)
	}
	if proof.Signature == "" {
		return fmt.Errorf("%w: missing X-Signature header", entity.ErrUnauthorized)
	}

	timestamp, err := strconv.ParseInt(proof.Timestamp, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid X-Timestamp format: %w", entity.ErrUnauthorized, err)
	}

	now := a.now()
	timeDiff := now.Sub(time.Unix(timestamp, 0))
	if timeDiff < 0 {
		timeDiff = -timeDiff
	}
	if timeDiff > a.timestampTolerance {
		a.logger.LogWarning(ctx, "Proof timestamp out of tolerance",
			"principal", principal,
			"timestamp", timestamp,
			"current_time", now.Unix(),
			"tolerance_seconds", a.timestampTolerance.Seconds())
		return fmt.Errorf("%w: timestamp out of tolerance: difference is %v, max allowed is %v",
			entity.ErrUnauthorized, timeDiff, a.timestampTolerance)
	}

	expected := Sign(secret, principal, call, proof.Timestamp, proof.Nonce)
	if !hmac.Equal([]byte(expected), []byte(proof.Signature)) {
		a.logger.LogWarning(ctx, "Invalid signature",
			"principal", principal,
			"operation", call.Operation)
		return fmt.Errorf("%w: invalid signature", entity.ErrUnauthorized)
	}

	// Nonces are consumed only by correctly signed proofs.
	if !a.nonceStore.Use(principal+"/"+proof.Nonce, now) {
		a.logger.LogWarning(ctx, "Duplicate nonce detected (replay attack)",
			"principal", principal,
			"nonce", proof.Nonce)
		return fmt.Errorf("%w: duplicate nonce detected: possible replay attack", entity.ErrUnauthorized)
	}

	return nil
}
