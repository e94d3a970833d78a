package entity

// InitializeRequest represents the incoming initialize payload
type InitializeRequest struct {
	Admin string `json:"admin"`
	Asset string `json:"asset"`
}

// Validate validates the initialize request
func (r *InitializeRequest) Validate() error {
	if r.Admin == "" {
		return ErrMissingAdmin
	}
	if r.Asset == "" {
		return ErrMissingAsset
	}
	return nil
}

// Call returns the call the admin has to authorize.
func (r *InitializeRequest) Call() Call {
	return NewCall(OpInitialize, r.Admin, r.Asset)
}

// MovementRequest is the payload shared by deposit and withdraw
type MovementRequest struct {
	User   string `json:"user"`
	Amount string `json:"amount"`
}

// Validate validates the movement request
func (r *MovementRequest) Validate() error {
	if r.User == "" {
		return ErrMissingUser
	}
	if r.Amount == "" {
		return ErrMissingAmount
	}
	return nil
}

// EmergencyWithdrawRequest represents the incoming emergency withdrawal payload
type EmergencyWithdrawRequest struct {
	To     string `json:"to"`
	Amount string `json:"amount"`
}

// Validate validates the emergency withdrawal request
func (r *EmergencyWithdrawRequest) Validate() error {
	if r.To == "" {
		return ErrMissingRecipient
	}
	if r.Amount == "" {
		return ErrMissingAmount
	}
	return nil
}
