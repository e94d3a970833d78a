package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"microvault.com/internal/application/usecase"
	"microvault.com/internal/domain/entity"
	"microvault.com/internal/infrastructure/logger"
)

const maxBodyBytes = 1 << 20

// Handler holds HTTP handlers and their dependencies
type Handler struct {
	vault  *usecase.Vault
	logger logger.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(vault *usecase.Vault, logger logger.Logger) *Handler {
	return &Handler{
		vault:  vault,
		logger: logger,
	}
}

// HandleInitialize handles POST /initialize requests
func (h *Handler) HandleInitialize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := loggerFrom(ctx, h.logger)

	var req entity.InitializeRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.vault.Initialize(ctx, req, proofFrom(r)); err != nil {
		requestLogger.LogError(ctx, "Failed to initialize vault", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	requestLogger.LogInfo(ctx, "Initialize request processed", "admin", req.Admin, "asset", req.Asset)
}

// HandleDeposit handles POST /deposit requests
func (h *Handler) HandleDeposit(w http.ResponseWriter, r *http.Request) {
	h.handleMovement(w, r, entity.OpDeposit, h.vault.Deposit)
}

// HandleWithdraw handles POST /withdraw requests
func (h *Handler) HandleWithdraw(w http.ResponseWriter, r *http.Request) {
	h.handleMovement(w, r, entity.OpWithdraw, h.vault.Withdraw)
}

type movementFunc func(ctx context.Context, user string, amount decimal.Decimal, proof entity.AuthorizationProof) error

func (h *Handler) handleMovement(w http.ResponseWriter, r *http.Request, op string, execute movementFunc) {
	ctx := r.Context()
	requestLogger := loggerFrom(ctx, h.logger)

	var req entity.MovementRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, fmt.Errorf("%w: %w", entity.ErrInvalidRequest, err))
		return
	}

	amount, err := entity.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := execute(ctx, req.User, amount, proofFrom(r)); err != nil {
		requestLogger.LogError(ctx, "Failed to process "+op, err, "user", req.User, "amount", req.Amount)
		writeError(w, err)
		return
	}

	balance, err := h.vault.Balance(ctx, req.User)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entity.BalanceResponse{User: req.User, Amount: entity.FormatAmount(balance)})
	requestLogger.LogInfo(ctx, "Processed "+op, "user", req.User, "amount", req.Amount)
}

// HandleEmergencyWithdraw handles POST /emergency-withdraw requests
func (h *Handler) HandleEmergencyWithdraw(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestLogger := loggerFrom(ctx, h.logger)

	var req entity.EmergencyWithdrawRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, fmt.Errorf("%w: %w", entity.ErrInvalidRequest, err))
		return
	}

	amount, err := entity.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.vault.EmergencyWithdraw(ctx, req.To, amount, proofFrom(r)); err != nil {
		requestLogger.LogError(ctx, "Failed to process emergency withdrawal", err, "to", req.To, "amount", req.Amount)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleBalance handles GET /balance/{user} requests
func (h *Handler) HandleBalance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	user := strings.TrimPrefix(r.URL.Path, "/balance/")
	if user == "" || user == r.URL.Path {
		http.Error(w, "Missing user parameter", http.StatusBadRequest)
		return
	}

	balance, err := h.vault.Balance(ctx, user)
	if err != nil {
		loggerFrom(ctx, h.logger).LogError(ctx, "Failed to get balance", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entity.BalanceResponse{User: user, Amount: entity.FormatAmount(balance)})
}

// HandleTVL handles GET /tvl requests
func (h *Handler) HandleTVL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	total, err := h.vault.TotalValueLocked(ctx)
	if err != nil {
		loggerFrom(ctx, h.logger).LogError(ctx, "Failed to get total value locked", err)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, entity.TVLResponse{TotalValueLocked: entity.FormatAmount(total)})
}

// HandleConfig handles GET /config requests
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	cfg, err := h.vault.Config(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cfg)
}

// decode reads a JSON body for a POST endpoint. It writes the error response
// itself and reports whether the handler should continue.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return false
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		loggerFrom(r.Context(), h.logger).LogError(r.Context(), "Failed to read request body", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}

	return true
}

// proofFrom extracts the authorization proof headers
func proofFrom(r *http.Request) entity.AuthorizationProof {
	return entity.AuthorizationProof{
		Timestamp: r.Header.Get("X-Timestamp"),
		Nonce:     r.Header.Get("X-Nonce"),
		Signature: r.Header.Get("X-Signature"),
	}
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, entity.ErrInvalidAmount),
		errors.Is(err, entity.ErrInvalidRequest),
		errors.Is(err, entity.ErrMissingAmount):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrInsufficientBalance),
		errors.Is(err, entity.ErrAlreadyInitialized),
		errors.Is(err, entity.ErrNotInitialized):
		return http.StatusConflict
	case errors.Is(err, entity.ErrTransferFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// SetupRoutes sets up all HTTP routes
func (h *Handler) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	routes := map[string]http.HandlerFunc{
		"/initialize":         h.HandleInitialize,
		"/deposit":            h.HandleDeposit,
		"/withdraw":           h.HandleWithdraw,
		"/emergency-withdraw": h.HandleEmergencyWithdraw,
		"/balance/":           h.HandleBalance,
		"/tvl":                h.HandleTVL,
		"/config":             h.HandleConfig,
	}

	for path, handler := range routes {
		mux.HandleFunc(path, RequestIDMiddleware(LoggingMiddleware(handler, h.logger), h.logger))
	}

	return mux
}
