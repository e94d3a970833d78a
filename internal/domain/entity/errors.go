package entity

import "errors"

var (
	ErrAlreadyInitialized  = errors.New("vault already initialized")
	ErrNotInitialized      = errors.New("vault not initialized")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInsufficientBalance = errors.New("insufficient vault balance")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrTransferFailed      = errors.New("asset transfer failed")
	ErrInvalidRequest      = errors.New("invalid request")
)

var (
	ErrMissingUser      = errors.New("missing required field: user")
	ErrMissingAdmin     = errors.New("missing required field: admin")
	ErrMissingAsset     = errors.New("missing required field: asset")
	ErrMissingAmount    = errors.New("missing required field: amount")
	ErrMissingRecipient = errors.New("missing required field: to")
)
