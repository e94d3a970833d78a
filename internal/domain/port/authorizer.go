package port

import (
	"context"

	"microvault.com/internal/domain/entity"
)

// Authorizer is the port for verifying that a principal sanctioned a call
type Authorizer interface {
	Authorize(ctx context.Context, principal string, call entity.Call, proof entity.AuthorizationProof) error
}
