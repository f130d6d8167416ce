// Package lifecycle is the authoritative state machine for work-order
// status. Every status write in the service layer goes through
// CanTransition; nothing else is allowed to move a work order.
package lifecycle

// Status of a work order.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusScheduled  Status = "scheduled"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusQAHold     Status = "qa_hold"
	StatusCancelled  Status = "cancelled"
)

// Role of the actor requesting a transition.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleDispatcher Role = "dispatcher"
	RoleTechnician Role = "technician"
	RoleCustomer   Role = "customer"
)

// Statuses lists every work-order status.
var Statuses = []Status{
	StatusDraft,
	StatusScheduled,
	StatusInProgress,
	StatusDone,
	StatusQAHold,
	StatusCancelled,
}

// Roles lists every actor role.
var Roles = []Role{RoleAdmin, RoleDispatcher, RoleTechnician, RoleCustomer}

// ValidStatus reports whether s is a known status.
func ValidStatus(s Status) bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// ValidRole reports whether r is a known role.
func ValidRole(r Role) bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Terminal reports whether s has no outbound transitions.
func Terminal(s Status) bool {
	return s == StatusDone || s == StatusCancelled
}

type edge struct {
	from Status
	to   Status
}

type guard struct {
	// dispatch allows dispatcher and admin actors.
	dispatch bool
	// assignee allows the technician assigned to the order.
	assignee bool
}

// transitions is the single source of truth for who may move a work
// order between which statuses. Cancellation from non-terminal states
// is handled separately in CanTransition.
var transitions = map[edge]guard{
	{StatusDraft, StatusScheduled}:      {dispatch: true},
	{StatusScheduled, StatusInProgress}: {assignee: true},
	{StatusInProgress, StatusDone}:      {assignee: true},
	{StatusInProgress, StatusQAHold}:    {assignee: true},
	{StatusQAHold, StatusDone}:          {dispatch: true},
}

// CanTransition reports whether an actor with the given role may move a
// work order from one status to another. isAssignee must be true only
// when the actor is the technician currently assigned to the order.
func CanTransition(from, to Status, role Role, isAssignee bool) bool {
	if from == to {
		return false
	}

	// Dispatchers and admins may cancel any non-terminal order.
	if to == StatusCancelled {
		return !Terminal(from) && (role == RoleDispatcher || role == RoleAdmin)
	}

	g, ok := transitions[edge{from, to}]
	if !ok {
		return false
	}
	if g.dispatch && (role == RoleDispatcher || role == RoleAdmin) {
		return true
	}
	if g.assignee && role == RoleTechnician && isAssignee {
		return true
	}
	return false
}
