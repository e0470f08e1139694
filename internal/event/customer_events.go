package event

import "time"

type CustomerEventPayload struct {
	CustomerID int64  `json:"customerId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	University string `json:"university"`
	Age        *int64 `json:"age,omitempty"`
	HasPicture bool   `json:"hasPicture"`
}

type CustomerRegisteredEvent struct {
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}

type CustomerDeletedEvent struct {
	CustomerID int64     `json:"customerId"`
	Timestamp  time.Time `json:"timestamp"`
}
