package models

// Booking status values. A booking is created WAITING and moves exactly
// once to APPROVED or REJECTED.
const (
	StatusWaiting  = "WAITING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
)

// Booking list filter states. APPROVED is deliberately absent: it is a
// status a booking may hold, not a list filter.
const (
	StateAll      = "ALL"
	StateCurrent  = "CURRENT"
	StatePast     = "PAST"
	StateFuture   = "FUTURE"
	StateWaiting  = "WAITING"
	StateRejected = "REJECTED"
)

// DefaultPageSize is the page size used when the caller does not ask
// for one.
const DefaultPageSize = 10

// ValidState reports whether s is a known booking filter state.
func ValidState(s string) bool {
	switch s {
	case StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected:
		return true
	}
	return false
}
