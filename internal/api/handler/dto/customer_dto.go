package dto

import (
	"encoding/base64"

	"ticketing-backend/internal/domain/customer"
)

// Pictures leave the database as raw bytes and cross the wire as a JPEG
// data URI; the normalizer guarantees every stored picture is a JPEG.
const pictureDataURIPrefix = "data:image/jpeg;base64,"

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CustomerView is the public projection of a customer: every stored field
// except the password. Picture is a data URI, or null when none was uploaded.
type CustomerView struct {
	CustomerID int64   `json:"customer_id"`
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Email      string  `json:"email"`
	University string  `json:"university"`
	Age        *int64  `json:"age"`
	Picture    *string `json:"picture"`
}

func NewCustomerView(cust *customer.Customer) CustomerView {
	if cust == nil {
		return CustomerView{}
	}

	var picture *string
	if cust.HasPicture() {
		encoded := pictureDataURIPrefix + base64.StdEncoding.EncodeToString(cust.Picture)
		picture = &encoded
	}

	return CustomerView{
		CustomerID: cust.CustomerID,
		FirstName:  cust.FirstName,
		LastName:   cust.LastName,
		Email:      cust.Email,
		University: cust.University,
		Age:        cust.Age,
		Picture:    picture,
	}
}

type RegisterResponse struct {
	Message    string `json:"message"`
	CustomerID int64  `json:"customerId"`
}

type DeleteResponse struct {
	Message      string `json:"message"`
	AffectedRows int64  `json:"affectedRows"`
}

type LoginResponse struct {
	Message string       `json:"message"`
	User    CustomerView `json:"user"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
