package customer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"ticketing-backend/internal/event"
	"ticketing-backend/internal/infrastructure/monitoring"
	"ticketing-backend/internal/pkg/apperrors"
)

const (
	msgMissingFields      = "All required fields must be filled"
	msgInvalidEmail       = "Invalid email format"
	msgPasswordEightDigit = "Password must be exactly 8 digits"
	msgInvalidPassword    = "Invalid password format"
	msgMissingCredentials = "Email and password are required"
	msgInvalidAge         = "Invalid age format"
)

// RegistrationInput carries the raw form fields and the raw uploaded image
// bytes exactly as the boundary extracted them. No trimming or case folding
// is applied anywhere in the pipeline.
type RegistrationInput struct {
	FirstName  string
	LastName   string
	Email      string
	Password   string
	University string
	Age        string
	Picture    []byte
}

type CustomerService interface {
	Register(ctx context.Context, input RegistrationInput) (*Customer, error)
	Authenticate(ctx context.Context, email, password string) (*Customer, error)
	GetCustomer(ctx context.Context, customerID int64) (*Customer, error)
	DeleteCustomer(ctx context.Context, customerID int64) (int64, error)
}

var _ CustomerService = (*customerService)(nil)

type customerService struct {
	repo       CustomerRepository
	normalizer ImageNormalizer
	pub        event.EventPublisher
	logger     *slog.Logger
}

func NewCustomerService(repo CustomerRepository, normalizer ImageNormalizer, pub event.EventPublisher, logger *slog.Logger) CustomerService {
	if repo == nil {
		panic("customer repository cannot be nil")
	}
	if normalizer == nil {
		panic("image normalizer cannot be nil")
	}
	if pub == nil {
		pub = event.NoopPublisher{}
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerService, using default stderr handler")
	}

	return &customerService{
		repo:       repo,
		normalizer: normalizer,
		pub:        pub,
		logger:     logger.With(slog.String("component", "customerService")),
	}
}

func newCustomerEventPayload(cust *Customer) event.CustomerEventPayload {
	if cust == nil {
		return event.CustomerEventPayload{}
	}
	return event.CustomerEventPayload{
		CustomerID: cust.CustomerID,
		FirstName:  cust.FirstName,
		LastName:   cust.LastName,
		Email:      cust.Email,
		University: cust.University,
		Age:        cust.Age,
		HasPicture: cust.HasPicture(),
	}
}

// Register runs the registration pipeline: field presence, email and
// password shape, age parsing, uniqueness pre-check, optional image
// normalization, insert. Each stage short-circuits; the unique constraint
// at insert remains the final authority on duplicate emails.
func (s *customerService) Register(ctx context.Context, input RegistrationInput) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to register new customer")

	if input.FirstName == "" || input.LastName == "" || input.Email == "" ||
		input.Password == "" || input.University == "" {
		s.logger.WarnContext(ctx, "Validation failed: missing required field")
		return nil, apperrors.NewValidationError("", msgMissingFields)
	}

	if !IsValidEmail(input.Email) {
		s.logger.WarnContext(ctx, "Validation failed: malformed email")
		return nil, apperrors.NewValidationError("email", msgInvalidEmail)
	}

	if !IsValidPassword(input.Password) {
		s.logger.WarnContext(ctx, "Validation failed: malformed password")
		return nil, apperrors.NewValidationError("password", msgPasswordEightDigit)
	}

	var age *int64
	if input.Age != "" {
		parsed, err := strconv.ParseInt(input.Age, 10, 64)
		if err != nil {
			s.logger.WarnContext(ctx, "Validation failed: malformed age", slog.String("age", input.Age))
			return nil, apperrors.NewValidationError("age", msgInvalidAge)
		}
		age = &parsed
	}
	s.logger.InfoContext(ctx, "Input validation passed")

	exists, err := s.repo.ExistsByEmail(ctx, input.Email)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository error checking email uniqueness", slog.Any("error", err))
		return nil, fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if exists {
		s.logger.WarnContext(ctx, "Registration rejected: email already registered")
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrAlreadyExists)
	}

	var picture []byte
	if len(input.Picture) > 0 {
		picture, err = s.normalizer.Normalize(input.Picture)
		if err != nil {
			s.logger.WarnContext(ctx, "Image normalization failed", slog.Any("error", err))
			return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidImage, err)
		}
		s.logger.InfoContext(ctx, "Image normalized",
			slog.Int("raw_bytes", len(input.Picture)), slog.Int("normalized_bytes", len(picture)))
	}

	// Shape-validated above, so this cannot fail; 8 digits fit an int64.
	password, _ := strconv.ParseInt(input.Password, 10, 64)

	cust := &Customer{
		FirstName:  input.FirstName,
		LastName:   input.LastName,
		Email:      input.Email,
		Password:   password,
		University: input.University,
		Age:        age,
		Picture:    picture,
	}

	s.logger.InfoContext(ctx, "Calling repository Create")
	if err := s.repo.Create(ctx, cust); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			// Lost the pre-check race; the constraint is authoritative.
			s.logger.WarnContext(ctx, "Insert rejected by unique constraint", slog.Any("error", err))
			return nil, fmt.Errorf("%w: email already registered", apperrors.ErrAlreadyExists)
		}
		if errors.Is(err, apperrors.ErrValueTooLarge) {
			s.logger.WarnContext(ctx, "Insert rejected: normalized picture exceeds column bound", slog.Any("error", err))
			return nil, fmt.Errorf("%w: normalized picture too large", apperrors.ErrValueTooLarge)
		}
		s.logger.ErrorContext(ctx, "Repository failed to create customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to register customer: %w", err)
	}

	monitoring.RecordCustomerRegistered()

	registeredEvent := event.CustomerRegisteredEvent{
		Timestamp: time.Now(),
		Payload:   newCustomerEventPayload(cust),
	}
	if pubErr := s.pub.PublishCustomerRegistered(ctx, registeredEvent); pubErr != nil {
		s.logger.ErrorContext(ctx, "Customer registered, but FAILED to publish registration event", slog.Any("error", pubErr))
	}

	s.logger.InfoContext(ctx, "Successfully registered new customer", slog.Int64("customerID", cust.CustomerID))
	return cust, nil
}

// Authenticate validates the credential shapes, then compares the integer
// value of password against the stored one. Unknown email and wrong
// password are deliberately indistinguishable to the caller.
func (s *customerService) Authenticate(ctx context.Context, email, password string) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to authenticate customer")

	if email == "" || password == "" {
		s.logger.WarnContext(ctx, "Validation failed: missing credentials")
		return nil, apperrors.NewValidationError("", msgMissingCredentials)
	}

	if !IsValidEmail(email) {
		s.logger.WarnContext(ctx, "Validation failed: malformed email")
		return nil, apperrors.NewValidationError("email", msgInvalidEmail)
	}

	if !IsValidPassword(password) {
		s.logger.WarnContext(ctx, "Validation failed: malformed password")
		return nil, apperrors.NewValidationError("password", msgInvalidPassword)
	}

	cust, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Authentication failed: unknown email")
			monitoring.RecordLoginAttempt("failure")
			return nil, apperrors.ErrInvalidCredentials
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer by email", slog.Any("error", err))
		return nil, fmt.Errorf("failed to authenticate customer: %w", err)
	}

	provided, _ := strconv.ParseInt(password, 10, 64)
	if provided != cust.Password {
		s.logger.WarnContext(ctx, "Authentication failed: password mismatch")
		monitoring.RecordLoginAttempt("failure")
		return nil, apperrors.ErrInvalidCredentials
	}

	monitoring.RecordLoginAttempt("success")
	s.logger.InfoContext(ctx, "Successfully authenticated customer", slog.Int64("customerID", cust.CustomerID))
	return cust, nil
}

func (s *customerService) GetCustomer(ctx context.Context, customerID int64) (*Customer, error) {
	s.logger.InfoContext(ctx, "Attempting to get customer by ID")

	cust, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found by repository")
			return nil, apperrors.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer", slog.Any("error", err))
		return nil, fmt.Errorf("failed to get customer %d: %w", customerID, err)
	}

	s.logger.InfoContext(ctx, "Successfully retrieved customer")
	return cust, nil
}

// DeleteCustomer verifies existence before deleting so a missing id yields
// a precise not-found instead of a zero-count success.
func (s *customerService) DeleteCustomer(ctx context.Context, customerID int64) (int64, error) {
	s.logger.InfoContext(ctx, "Attempting to delete customer")

	if _, err := s.repo.FindByID(ctx, customerID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Customer not found by repository for delete")
			return 0, apperrors.ErrNotFound
		}
		s.logger.ErrorContext(ctx, "Repository error finding customer for delete", slog.Any("error", err))
		return 0, fmt.Errorf("cannot find customer %d to delete: %w", customerID, err)
	}

	affected, err := s.repo.Delete(ctx, customerID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Repository failed to delete customer", slog.Any("error", err))
		return 0, fmt.Errorf("failed to delete customer %d: %w", customerID, err)
	}

	monitoring.RecordCustomerDeleted()

	deletedEvent := event.CustomerDeletedEvent{
		CustomerID: customerID,
		Timestamp:  time.Now(),
	}
	if pubErr := s.pub.PublishCustomerDeleted(ctx, deletedEvent); pubErr != nil {
		s.logger.ErrorContext(ctx, "Customer deleted, but FAILED to publish deletion event", slog.Any("error", pubErr))
	}

	s.logger.InfoContext(ctx, "Successfully deleted customer", slog.Int64("affected", affected))
	return affected, nil
}
