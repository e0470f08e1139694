package customer

import "time"

// Customer is the persisted registration record. Password holds the raw
// 8-digit numeric password as an integer; this mirrors the legacy storage
// contract and is a known defect, not a design choice.
type Customer struct {
	CustomerID int64     `json:"customerId"`
	FirstName  string    `json:"firstName"`
	LastName   string    `json:"lastName"`
	Email      string    `json:"email"`
	Password   int64     `json:"-"`
	University string    `json:"university"`
	Age        *int64    `json:"age,omitempty"`
	Picture    []byte    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (c *Customer) HasPicture() bool {
	return len(c.Picture) > 0
}
