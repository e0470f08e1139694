package customer

import (
	"context"
)

// CustomerRepository abstracts the relational store. Implementations report
// failures with the apperrors sentinels: apperrors.ErrNotFound for missing
// rows, apperrors.ErrAlreadyExists for unique-key violations,
// apperrors.ErrValueTooLarge when a column bound rejects the value, and
// apperrors.ErrDatabase for everything else.
type CustomerRepository interface {
	// Create inserts a new customer and fills in the generated CustomerID
	// and timestamps.
	Create(ctx context.Context, customer *Customer) error

	FindByID(ctx context.Context, customerID int64) (*Customer, error)

	FindByEmail(ctx context.Context, email string) (*Customer, error)

	// ExistsByEmail is the best-effort uniqueness pre-check; the unique
	// constraint at insert remains the final authority.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Delete removes the row and returns the affected count (0 or 1).
	// A zero count is not an error.
	Delete(ctx context.Context, customerID int64) (int64, error)
}

// ImageNormalizer converts a raw upload into the bounded, re-encoded form
// that is the only picture representation ever persisted.
type ImageNormalizer interface {
	Normalize(raw []byte) ([]byte, error)
}
