package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"

	"ticketing-backend/internal/api/handler/dto"
	"ticketing-backend/internal/domain/customer"
	"ticketing-backend/internal/pkg/apperrors"

	"github.com/go-chi/chi/v5"
)

const (
	// ParseMultipartForm keeps at most this much of the body in memory;
	// the rest spills to temp files.
	maxMultipartMemory = 10 << 20

	msgRegistered   = "Customer registered successfully"
	msgDeleted      = "Customer deleted successfully"
	msgLoginOK      = "Login successful"
	msgInvalidID    = "Invalid customer ID format"
	msgNotFound     = "Customer not found"
	msgEmailTaken   = "Email already registered"
	msgBadImage     = "Invalid image format or corrupted file"
	msgImageTooBig  = "Image size too large even after processing"
	msgBadLogin     = "Invalid email or password"
	msgInternal     = "Internal server error"
)

type CustomerHandler struct {
	service     customer.CustomerService
	uploadLimit int64
	logger      *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, uploadLimit int64, logger *slog.Logger) *CustomerHandler {
	if s == nil {
		panic("CustomerService cannot be nil for CustomerHandler")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerHandler, using default stderr handler")
	}
	return &CustomerHandler{
		service:     s,
		uploadLimit: uploadLimit,
		logger:      logger.With("component", "CustomerHandler"),
	}
}

// RegisterCustomer godoc
// @Summary Register a new customer
// @Description Registers a customer from a multipart form; the optional picture is normalized to a bounded JPEG before storage.
// @Tags customers
// @Accept multipart/form-data
// @Produce json
// @Param firstName formData string true "First name"
// @Param lastName formData string true "Last name"
// @Param email formData string true "Email address"
// @Param password formData string true "Password, exactly 8 digits"
// @Param university formData string true "University"
// @Param age formData integer false "Age"
// @Param picture formData file false "Student ID picture"
// @Success 201 {object} dto.RegisterResponse
// @Failure 400 {object} dto.ErrorResponse "Validation failed"
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [post]
func (h *CustomerHandler) RegisterCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.DebugContext(ctx, "Received register customer request")

	if h.uploadLimit > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.uploadLimit)
	}

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		h.logger.WarnContext(ctx, "Failed to parse multipart form", slog.Any("error", err))
		h.respondError(w, r, fmt.Errorf("%w: invalid multipart form: %w", apperrors.ErrInvalidArgument, err))
		return
	}

	input := customer.RegistrationInput{
		FirstName:  r.FormValue("firstName"),
		LastName:   r.FormValue("lastName"),
		Email:      r.FormValue("email"),
		Password:   r.FormValue("password"),
		University: r.FormValue("university"),
		Age:        r.FormValue("age"),
	}

	file, _, err := r.FormFile("picture")
	if err == nil {
		defer file.Close()
		raw, readErr := io.ReadAll(file)
		if readErr != nil {
			h.logger.ErrorContext(ctx, "Failed to read uploaded picture", slog.Any("error", readErr))
			h.respondError(w, r, fmt.Errorf("%w: failed to read uploaded picture: %w", apperrors.ErrInternalServer, readErr))
			return
		}
		input.Picture = raw
	} else if !errors.Is(err, http.ErrMissingFile) {
		h.logger.WarnContext(ctx, "Malformed picture part", slog.Any("error", err))
		h.respondError(w, r, fmt.Errorf("%w: malformed picture part: %w", apperrors.ErrInvalidArgument, err))
		return
	}

	cust, err := h.service.Register(ctx, input)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusCreated, dto.RegisterResponse{
		Message:    msgRegistered,
		CustomerID: cust.CustomerID,
	})
}

// GetCustomer godoc
// @Summary Get a customer by ID
// @Tags customers
// @Produce json
// @Param customerID path int true "Customer ID"
// @Success 200 {object} dto.CustomerView
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID format"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [get]
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.DebugContext(ctx, "Received get customer request")

	customerID, err := h.getCustomerIDFromURL(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	cust, err := h.service.GetCustomer(ctx, customerID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, dto.NewCustomerView(cust))
}

// DeleteCustomer godoc
// @Summary Delete a customer by ID
// @Tags customers
// @Produce json
// @Param customerID path int true "Customer ID"
// @Success 200 {object} dto.DeleteResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID format"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [delete]
func (h *CustomerHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.logger.DebugContext(ctx, "Received delete customer request")

	customerID, err := h.getCustomerIDFromURL(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	affected, err := h.service.DeleteCustomer(ctx, customerID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respondJSON(w, r, http.StatusOK, dto.DeleteResponse{
		Message:      msgDeleted,
		AffectedRows: affected,
	})
}

func (h *CustomerHandler) getCustomerIDFromURL(r *http.Request) (int64, error) {
	idStr := chi.URLParam(r, "customerID")
	customerID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Invalid customer ID in URL", slog.String("customerID", idStr))
		return 0, apperrors.NewValidationError("customerID", msgInvalidID)
	}
	return customerID, nil
}

func (h *CustomerHandler) respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	respondJSON(w, r, status, payload, h.logger)
}

func (h *CustomerHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	respondError(w, r, err, h.logger)
}

func respondJSON(w http.ResponseWriter, r *http.Request, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.ErrorContext(r.Context(), "Failed to encode JSON response", slog.Any("error", err))
	}
}

// respondError maps a pipeline error to its status and client message.
// Validation errors carry their own message; everything else gets a fixed
// phrase so internals never leak to the client.
func respondError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := http.StatusInternalServerError
	message := msgInternal

	var validationErr *apperrors.ValidationError
	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		message = validationErr.Message
	case errors.Is(err, apperrors.ErrInvalidImage):
		status = http.StatusBadRequest
		message = msgBadImage
	case errors.Is(err, apperrors.ErrValueTooLarge):
		status = http.StatusBadRequest
		message = msgImageTooBig
	case errors.Is(err, apperrors.ErrAlreadyExists):
		status = http.StatusConflict
		message = msgEmailTaken
	case errors.Is(err, apperrors.ErrNotFound):
		status = http.StatusNotFound
		message = msgNotFound
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		status = http.StatusUnauthorized
		message = msgBadLogin
	case errors.Is(err, apperrors.ErrInvalidArgument):
		status = http.StatusBadRequest
		message = "Invalid request payload"
	default:
		logger.ErrorContext(r.Context(), "Unhandled internal error", slog.Any("error", err))
	}

	logger.WarnContext(r.Context(), "Responding with error",
		slog.Int("status", status), slog.String("message", message))
	respondJSON(w, r, status, dto.ErrorResponse{Error: message}, logger)
}
