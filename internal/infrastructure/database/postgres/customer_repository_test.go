package postgres

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"ticketing-backend/internal/domain/customer"
	"ticketing-backend/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
)

const pgxmockExpectationsNotMetMsg = "there were unfulfilled expectations"

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

var testAge int64 = 21

var customerTest *customer.Customer = &customer.Customer{
	CustomerID: 1,
	FirstName:  "Alice",
	LastName:   "Smith",
	Email:      "alice@example.com",
	Password:   12345678,
	University: "State University",
	Age:        &testAge,
	Picture:    []byte{0xff, 0xd8, 0xff},
	CreatedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	UpdatedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
}

func setupCustomerRepo(t *testing.T) (context.Context, *CustomerRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}

	ctx := context.Background()
	repo := NewCustomerRepository(mockPool, logger)

	return ctx, repo, mockPool
}

func TestCreateCustomerWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	query := `
        INSERT INTO customers (first_name, last_name, email, password, university, age, picture, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
        RETURNING customer_id, created_at, updated_at`

	mockPool.ExpectQuery(regexp.QuoteMeta(query)).WithArgs(
		customerTest.FirstName,
		customerTest.LastName,
		customerTest.Email,
		customerTest.Password,
		customerTest.University,
		customerTest.Age,
		customerTest.Picture,
	).WillReturnRows(pgxmock.NewRows([]string{"customer_id", "created_at", "updated_at"}).
		AddRow(customerTest.CustomerID, customerTest.CreatedAt, customerTest.UpdatedAt))

	cust := *customerTest
	err := repo.Create(ctx, &cust)
	assert.NoError(t, err)
	assert.Equal(t, customerTest.CustomerID, cust.CustomerID)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestCreateCustomerWhenEmailTaken(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(`INSERT INTO customers`)).WithArgs(
		customerTest.FirstName,
		customerTest.LastName,
		customerTest.Email,
		customerTest.Password,
		customerTest.University,
		customerTest.Age,
		customerTest.Picture,
	).WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "customers_email_key"})

	cust := *customerTest
	err := repo.Create(ctx, &cust)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestCreateCustomerWhenPictureTooLarge(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(regexp.QuoteMeta(`INSERT INTO customers`)).WithArgs(
		customerTest.FirstName,
		customerTest.LastName,
		customerTest.Email,
		customerTest.Password,
		customerTest.University,
		customerTest.Age,
		customerTest.Picture,
	).WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "customers_picture_size_check"})

	cust := *customerTest
	err := repo.Create(ctx, &cust)
	assert.ErrorIs(t, err, apperrors.ErrValueTooLarge)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func customerRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"customer_id", "first_name", "last_name", "email", "password",
		"university", "age", "picture", "created_at", "updated_at",
	}).AddRow(
		customerTest.CustomerID,
		customerTest.FirstName,
		customerTest.LastName,
		customerTest.Email,
		customerTest.Password,
		customerTest.University,
		customerTest.Age,
		customerTest.Picture,
		customerTest.CreatedAt,
		customerTest.UpdatedAt,
	)
}

func TestFindByIDWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(`SELECT (.+)\s+FROM customers\s+WHERE customer_id = \$1`).
		WithArgs(customerTest.CustomerID).
		WillReturnRows(customerRows())

	cust, err := repo.FindByID(ctx, customerTest.CustomerID)
	assert.NoError(t, err)
	assert.NotNil(t, cust)
	if cust != nil {
		assert.Equal(t, customerTest.Email, cust.Email)
		assert.Equal(t, customerTest.Password, cust.Password)
		assert.Equal(t, customerTest.Picture, cust.Picture)
	}
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindByIDWhenNotFound(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(`SELECT (.+)\s+FROM customers\s+WHERE customer_id = \$1`).
		WithArgs(int64(404)).
		WillReturnError(pgx.ErrNoRows)

	cust, err := repo.FindByID(ctx, 404)
	assert.Nil(t, cust)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindByEmailWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(`SELECT (.+)\s+FROM customers\s+WHERE email = \$1`).
		WithArgs(customerTest.Email).
		WillReturnRows(customerRows())

	cust, err := repo.FindByEmail(ctx, customerTest.Email)
	assert.NoError(t, err)
	assert.NotNil(t, cust)
	if cust != nil {
		assert.Equal(t, customerTest.CustomerID, cust.CustomerID)
	}
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestFindByEmailWhenNotFound(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	mockPool.ExpectQuery(`SELECT (.+)\s+FROM customers\s+WHERE email = \$1`).
		WithArgs("nobody@example.com").
		WillReturnError(pgx.ErrNoRows)

	cust, err := repo.FindByEmail(ctx, "nobody@example.com")
	assert.Nil(t, cust)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestExistsByEmail(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	query := `SELECT EXISTS(SELECT 1 FROM customers WHERE email = $1)`

	mockPool.ExpectQuery(regexp.QuoteMeta(query)).
		WithArgs(customerTest.Email).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsByEmail(ctx, customerTest.Email)
	assert.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestDeleteCustomerWhenSuccess(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	query := `DELETE FROM customers WHERE customer_id = $1`

	mockPool.ExpectExec(regexp.QuoteMeta(query)).
		WithArgs(customerTest.CustomerID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	affected, err := repo.Delete(ctx, customerTest.CustomerID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), affected)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}

func TestDeleteCustomerWhenNoRows(t *testing.T) {
	ctx, repo, mockPool := setupCustomerRepo(t)
	defer mockPool.Close()

	query := `DELETE FROM customers WHERE customer_id = $1`

	mockPool.ExpectExec(regexp.QuoteMeta(query)).
		WithArgs(int64(404)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	affected, err := repo.Delete(ctx, 404)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), affected)
	assert.NoError(t, mockPool.ExpectationsWereMet(), pgxmockExpectationsNotMetMsg)
}
