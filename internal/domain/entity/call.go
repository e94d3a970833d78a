package entity

import "strings"

// Operation names used in authorization proofs.
const (
	OpInitialize        = "initialize"
	OpDeposit           = "deposit"
	OpWithdraw          = "withdraw"
	OpEmergencyWithdraw = "emergency_withdraw"
)

// Call describes one exact invocation a principal has to sign.
type Call struct {
	Operation string
	Args      []string
}

// NewCall builds a Call from an operation and its arguments.
func NewCall(operation string, args ...string) Call {
	return Call{Operation: operation, Args: args}
}

// Canonical returns the byte-stable form of the call: the operation
// followed by each argument, newline separated.
func (c Call) Canonical() string {
	parts := make([]string, 0, len(c.Args)+1)
	parts = append(parts, c.Operation)
	parts = append(parts, c.Args...)
	return strings.Join(parts, "\n")
}

// AuthorizationProof is the evidence a caller attaches to a call.
type AuthorizationProof struct {
	Timestamp string
	Nonce     string
	Signature string
}
