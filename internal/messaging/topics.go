package messaging

const (
	TopicOrderAccepted   = "order.accepted"
	TopicOrderDispatched = "order.dispatched"
)
