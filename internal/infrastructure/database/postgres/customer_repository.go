package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"ticketing-backend/internal/domain/customer"
	"ticketing-backend/internal/infrastructure/monitoring"
	"ticketing-backend/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
)

type DBPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

var errMsgFormat = "%w: %w"

const customerColumns = `customer_id, first_name, last_name, email, password, university, age, picture, created_at, updated_at`

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func (r *CustomerRepository) Create(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}

	r.logger.InfoContext(ctx, "Attempting to insert new customer", slog.String("email", cust.Email))

	query := `
        INSERT INTO customers (first_name, last_name, email, password, university, age, picture, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
        RETURNING customer_id, created_at, updated_at`

	start := time.Now()
	err := r.db.QueryRow(ctx, query,
		cust.FirstName,
		cust.LastName,
		cust.Email,
		cust.Password,
		cust.University,
		cust.Age,
		cust.Picture,
	).Scan(
		&cust.CustomerID,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)

	if err != nil {
		monitoring.RecordDBQuery("customer_insert", "error", time.Since(start))

		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Failed to insert customer due to unique constraint violation")
			return translatedErr
		}
		if errors.Is(translatedErr, apperrors.ErrValueTooLarge) {
			r.logger.WarnContext(ctx, "Failed to insert customer: column bound exceeded")
			return translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert customer: %w", apperrors.ErrDatabase, err)
	}

	monitoring.RecordDBQuery("customer_insert", "success", time.Since(start))
	r.logger.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", cust.CustomerID))
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (*customer.Customer, error) {
	r.logger.InfoContext(ctx, "Attempting to find customer by ID")

	query := `
        SELECT ` + customerColumns + `
        FROM customers
        WHERE customer_id = $1`

	start := time.Now()
	cust, err := r.scanCustomer(r.db.QueryRow(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			monitoring.RecordDBQuery("customer_find_by_id", "not_found", time.Since(start))
			r.logger.WarnContext(ctx, "Customer not found")
			return nil, apperrors.ErrNotFound
		}
		monitoring.RecordDBQuery("customer_find_by_id", "error", time.Since(start))
		r.logger.ErrorContext(ctx, "Failed to query/scan customer by ID", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get customer by ID: %w", apperrors.ErrDatabase, err)
	}

	monitoring.RecordDBQuery("customer_find_by_id", "success", time.Since(start))
	r.logger.InfoContext(ctx, "Customer found successfully")
	return cust, nil
}

func (r *CustomerRepository) FindByEmail(ctx context.Context, email string) (*customer.Customer, error) {
	r.logger.InfoContext(ctx, "Attempting to find customer by email")

	query := `
        SELECT ` + customerColumns + `
        FROM customers
        WHERE email = $1`

	start := time.Now()
	cust, err := r.scanCustomer(r.db.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			monitoring.RecordDBQuery("customer_find_by_email", "not_found", time.Since(start))
			r.logger.WarnContext(ctx, "Customer not found for the given email")
			return nil, apperrors.ErrNotFound
		}
		monitoring.RecordDBQuery("customer_find_by_email", "error", time.Since(start))
		r.logger.ErrorContext(ctx, "Failed to query/scan customer by email", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get customer by email: %w", apperrors.ErrDatabase, err)
	}

	monitoring.RecordDBQuery("customer_find_by_email", "success", time.Since(start))
	r.logger.InfoContext(ctx, "Customer found successfully by email", slog.Int64("customerID", cust.CustomerID))
	return cust, nil
}

func (r *CustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	r.logger.InfoContext(ctx, "Checking whether email is already registered")

	query := `SELECT EXISTS(SELECT 1 FROM customers WHERE email = $1)`

	start := time.Now()
	var exists bool
	err := r.db.QueryRow(ctx, query, email).Scan(&exists)
	if err != nil {
		monitoring.RecordDBQuery("customer_exists_by_email", "error", time.Since(start))
		r.logger.ErrorContext(ctx, "Failed to check email existence", slog.Any("error", err))
		return false, fmt.Errorf("%w: failed to check email existence: %w", apperrors.ErrDatabase, err)
	}

	monitoring.RecordDBQuery("customer_exists_by_email", "success", time.Since(start))
	return exists, nil
}

func (r *CustomerRepository) Delete(ctx context.Context, customerID int64) (int64, error) {
	r.logger.InfoContext(ctx, "Attempting to delete customer")

	query := `DELETE FROM customers WHERE customer_id = $1`

	start := time.Now()
	cmdTag, err := r.db.Exec(ctx, query, customerID)
	if err != nil {
		monitoring.RecordDBQuery("customer_delete", "error", time.Since(start))
		r.logger.ErrorContext(ctx, "Failed to execute delete customer", slog.Any("error", err))
		return 0, fmt.Errorf("%w: failed to delete customer: %w", apperrors.ErrDatabase, err)
	}

	monitoring.RecordDBQuery("customer_delete", "success", time.Since(start))
	affected := cmdTag.RowsAffected()
	if affected == 0 {
		r.logger.WarnContext(ctx, "Delete affected zero rows")
	} else {
		r.logger.InfoContext(ctx, "Customer deleted successfully")
	}
	return affected, nil
}

func (r *CustomerRepository) scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var cust customer.Customer
	err := row.Scan(
		&cust.CustomerID,
		&cust.FirstName,
		&cust.LastName,
		&cust.Email,
		&cust.Password,
		&cust.University,
		&cust.Age,
		&cust.Picture,
		&cust.CreatedAt,
		&cust.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &cust, nil
}

func translateDBError(err error, contextLogger *slog.Logger) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			contextLogger.Warn("Database unique constraint violation", "detail", pgErr.Detail, "constraint", pgErr.ConstraintName)
			return fmt.Errorf("%w: %s", apperrors.ErrAlreadyExists, pgErr.ConstraintName)
		case "22001", "23514":
			// Value exceeds the column's declared bound; for this schema
			// that means the normalized picture.
			contextLogger.Warn("Database rejected oversized value", "code", pgErr.Code, "detail", pgErr.Detail)
			return fmt.Errorf("%w: db error code %s", apperrors.ErrValueTooLarge, pgErr.Code)
		}

		contextLogger.Error("PostgreSQL specific error", "code", pgErr.Code, "message", pgErr.Message, "detail", pgErr.Detail)
		return fmt.Errorf("%w: db error code %s", apperrors.ErrDatabase, pgErr.Code)
	}

	contextLogger.Error("Generic database error", "error", err)
	return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
}
