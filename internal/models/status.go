package models

// OrderStatus is the lifecycle of an order.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"    // Created by marketing, editable
	OrderApproved   OrderStatus = "approved"   // Cleared by finance, can be loaded
	OrderHold       OrderStatus = "hold"       // Parked with a reason
	OrderCancelled  OrderStatus = "cancelled"  // Withdrawn
	OrderDispatched OrderStatus = "dispatched" // Left the warehouse
)

// OrderStatuses lists every order status in display order.
var OrderStatuses = []OrderStatus{OrderPending, OrderApproved, OrderHold, OrderCancelled, OrderDispatched}

// IsValid checks if the status is one of the known values.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderApproved, OrderHold, OrderCancelled, OrderDispatched:
		return true
	default:
		return false
	}
}

// CanEdit checks if the order's contents may still change.
func (s OrderStatus) CanEdit() bool {
	return s == OrderPending
}

// CanDelete checks if the order may be removed.
func (s OrderStatus) CanDelete() bool {
	return s == OrderPending
}

// CanDecide checks if approve, hold or cancel may be applied.
func (s OrderStatus) CanDecide() bool {
	return s == OrderPending
}

// CanLoad checks if the order's items may be put on a loading slip.
func (s OrderStatus) CanLoad() bool {
	return s == OrderApproved
}

// SlipStatus is the lifecycle of a loading slip.
type SlipStatus string

const (
	SlipConfirmed  SlipStatus = "confirmed"
	SlipLoading    SlipStatus = "loading"
	SlipDispatched SlipStatus = "dispatched"
	SlipPartial    SlipStatus = "partial"
	SlipDelivered  SlipStatus = "delivered"
)

// SlipStatuses lists every slip status in lifecycle order.
var SlipStatuses = []SlipStatus{SlipConfirmed, SlipLoading, SlipDispatched, SlipPartial, SlipDelivered}

// IsValid checks if the status is one of the known values.
func (s SlipStatus) IsValid() bool {
	return s.rank() >= 0
}

// IsBackOfficeTarget checks if back office may set this status.
func (s SlipStatus) IsBackOfficeTarget() bool {
	switch s {
	case SlipConfirmed, SlipDispatched, SlipPartial, SlipDelivered:
		return true
	default:
		return false
	}
}

// CanMoveTo reports whether a slip in s may be set to next. Progression is
// forward only; staying put is allowed.
func (s SlipStatus) CanMoveTo(next SlipStatus) bool {
	from, to := s.rank(), next.rank()
	if from < 0 || to < 0 {
		return false
	}
	return to >= from
}

func (s SlipStatus) rank() int {
	for i, st := range SlipStatuses {
		if st == s {
			return i
		}
	}
	return -1
}
