package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"ticketing-backend/internal/api/handler/dto"
	"ticketing-backend/internal/domain/customer"
	"ticketing-backend/internal/pkg/apperrors"
)

type AuthHandler struct {
	service customer.CustomerService
	logger  *slog.Logger
}

func NewAuthHandler(s customer.CustomerService, logger *slog.Logger) *AuthHandler {
	if s == nil {
		panic("CustomerService cannot be nil for AuthHandler")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewAuthHandler, using default stderr handler")
	}
	return &AuthHandler{
		service: s,
		logger:  logger.With("component", "AuthHandler"),
	}
}

// Login godoc
// @Summary Authenticate a customer
// @Description Checks an email and password pair and returns the customer's public profile on success.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.LoginResponse
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 401 {object} dto.ErrorResponse "Invalid email or password"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.DebugContext(ctx, "Received login request")

	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "Failed to decode login request body", slog.Any("error", err))
		respondError(w, r, fmt.Errorf("%w: invalid request body: %w", apperrors.ErrInvalidArgument, err), h.logger)
		return
	}

	cust, err := h.service.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		respondError(w, r, err, h.logger)
		return
	}

	respondJSON(w, r, http.StatusOK, dto.LoginResponse{
		Message: msgLoginOK,
		User:    dto.NewCustomerView(cust),
	}, h.logger)
}
