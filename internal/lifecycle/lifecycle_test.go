package lifecycle

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// allowed enumerates every (from, to, role, isAssignee) combination the
// transition table permits. Everything else must be rejected.
type allowedKey struct {
	from     Status
	to       Status
	role     Role
	assignee bool
}

func allowedSet() map[allowedKey]bool {
	set := map[allowedKey]bool{}

	for _, assignee := range []bool{true, false} {
		// Assignment moves a draft order to scheduled; dispatcher or admin.
		set[allowedKey{StatusDraft, StatusScheduled, RoleDispatcher, assignee}] = true
		set[allowedKey{StatusDraft, StatusScheduled, RoleAdmin, assignee}] = true

		// QA release is a dispatcher/admin override.
		set[allowedKey{StatusQAHold, StatusDone, RoleDispatcher, assignee}] = true
		set[allowedKey{StatusQAHold, StatusDone, RoleAdmin, assignee}] = true

		// Cancellation of any non-terminal order.
		for _, from := range []Status{StatusDraft, StatusScheduled, StatusInProgress, StatusQAHold} {
			set[allowedKey{from, StatusCancelled, RoleDispatcher, assignee}] = true
			set[allowedKey{from, StatusCancelled, RoleAdmin, assignee}] = true
		}
	}

	// Technician transitions require being the assignee.
	set[allowedKey{StatusScheduled, StatusInProgress, RoleTechnician, true}] = true
	set[allowedKey{StatusInProgress, StatusDone, RoleTechnician, true}] = true
	set[allowedKey{StatusInProgress, StatusQAHold, RoleTechnician, true}] = true

	return set
}

func TestCanTransitionMatrix(t *testing.T) {
	allowed := allowedSet()

	for _, from := range Statuses {
		for _, to := range Statuses {
			for _, role := range Roles {
				for _, assignee := range []bool{true, false} {
					name := fmt.Sprintf("%s->%s/%s/assignee=%v", from, to, role, assignee)
					t.Run(name, func(t *testing.T) {
						want := allowed[allowedKey{from, to, role, assignee}]
						got := CanTransition(from, to, role, assignee)
						assert.Equal(t, want, got)
					})
				}
			}
		}
	}
}

func TestTerminalStatesHaveNoOutboundTransitions(t *testing.T) {
	for _, from := range []Status{StatusDone, StatusCancelled} {
		for _, to := range Statuses {
			for _, role := range Roles {
				assert.False(t, CanTransition(from, to, role, true),
					"%s must be terminal, but %s may move it to %s", from, role, to)
			}
		}
	}
}

func TestCustomerMayNeverTransition(t *testing.T) {
	for _, from := range Statuses {
		for _, to := range Statuses {
			assert.False(t, CanTransition(from, to, RoleCustomer, true))
		}
	}
}

func TestUnassignedTechnicianRejected(t *testing.T) {
	assert.False(t, CanTransition(StatusScheduled, StatusInProgress, RoleTechnician, false))
	assert.False(t, CanTransition(StatusInProgress, StatusDone, RoleTechnician, false))
	assert.False(t, CanTransition(StatusInProgress, StatusQAHold, RoleTechnician, false))
}

func TestSelfTransitionRejected(t *testing.T) {
	for _, s := range Statuses {
		for _, role := range Roles {
			assert.False(t, CanTransition(s, s, role, true))
		}
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, Terminal(StatusDone))
	assert.True(t, Terminal(StatusCancelled))
	assert.False(t, Terminal(StatusDraft))
	assert.False(t, Terminal(StatusScheduled))
	assert.False(t, Terminal(StatusInProgress))
	assert.False(t, Terminal(StatusQAHold))
}

func TestValidStatusAndRole(t *testing.T) {
	assert.True(t, ValidStatus(StatusQAHold))
	assert.False(t, ValidStatus(Status("archived")))
	assert.True(t, ValidRole(RoleDispatcher))
	assert.False(t, ValidRole(Role("manager")))
}
