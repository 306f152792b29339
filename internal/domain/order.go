package domain

import "time"

type OrderStatus string

const (
	// OrderStatusPending is reserved for a future payment step and is not
	// produced by the current flow.
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusAccepted   OrderStatus = "ACCEPTED"
	OrderStatusRejected   OrderStatus = "REJECTED"
	OrderStatusDispatched OrderStatus = "DISPATCHED"
)

// Order is the persisted record of a submission, accepted or rejected.
// FoodDescription and FoodPrice are snapshots of the catalog taken at
// acceptance time and stay nil on rejected orders.
type Order struct {
	ID               string      `json:"id"`
	FoodRef          string      `json:"food_ref"`
	FoodDescription  *string     `json:"food_description"`
	FoodPrice        *float64    `json:"food_price"`
	Quantity         int         `json:"quantity"`
	Status           OrderStatus `json:"status"`
	CreatedBy        string      `json:"created_by"`
	CreatedDate      time.Time   `json:"created_date"`
	LastModifiedDate time.Time   `json:"last_modified_date"`
	Version          int         `json:"version"`
}
