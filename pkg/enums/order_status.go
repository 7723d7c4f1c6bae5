package enums

// OrderStatus tracks the lifecycle of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusCompleted OrderStatus = "completed"
	OrderStatusCanceled  OrderStatus = "canceled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCanceled,
}

// fulfillmentNext lists the single forward step allowed after payment.
var fulfillmentNext = map[OrderStatus]OrderStatus{
	OrderStatusPaid:    OrderStatusShipped,
	OrderStatusShipped: OrderStatusCompleted,
}

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsSettled reports whether payment has been captured for the order.
func (s OrderStatus) IsSettled() bool {
	return s == OrderStatusPaid || s == OrderStatusShipped || s == OrderStatusCompleted
}

// CanAdvanceTo reports whether target is the next fulfillment step after s.
func (s OrderStatus) CanAdvanceTo(target OrderStatus) bool {
	next, ok := fulfillmentNext[s]
	return ok && next == target
}

func ParseOrderStatus(value string) (OrderStatus, error) {
	return parseEnum("order status", validOrderStatuses, value)
}
