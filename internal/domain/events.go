package domain

type OrderAcceptedEvent struct {
	OrderID string `json:"order_id"`
}

type OrderDispatchedEvent struct {
	OrderID string `json:"order_id"`
}
