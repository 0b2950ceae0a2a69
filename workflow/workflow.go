/*
Package workflow validates and applies application state transitions.

PURPOSE:
  The backend workflow engine is the sole writer of workflowState; this
  package decides which actions are legal for which actor in which state,
  and builds the update envelope that asks the backend to move.

STATES:
  INITIATED -> {VALIDATED, PENDING} -> {APPROVED, REJECTED}
  CANCELLED is reachable from any non-terminal state.
  APPROVED, REJECTED and CANCELLED are terminal.

ACTOR GATES:
  Manager approve/reject:  INITIATED, VALIDATED, PENDING
  Manager cancel:          INITIATED, VALIDATED, PENDING, APPROVED
  Employee self-cancel:    INITIATED, VALIDATED, PENDING
  Every action requires a non-empty comment.

  The employee gate is deliberately the uniform non-terminal rule; the
  observed clients disagreed with each other here (one allowed cancelling
  REJECTED applications), and one canonical rule has to win.

TRANSITION FUNCTION:
  approve           -> (APPROVED,  NEXT)
  reject            -> (REJECTED,  REJECT)
  cancel (manager)  -> (CANCELLED, CANCEL)
  cancel (employee) -> (CANCELLED, USERCANCEL)

  Either the full (state, stateEvent, envelope) triple is produced or
  nothing is - a partial transition never escapes this package.

MANAGER QUEUE:
  An application whose stateEvent is USERCANCEL is excluded from the
  manager's pending queue; it stays visible only to the employee.

SEE ALSO:
  - entity: state and event tokens
  - envelope: the update payload produced on success
*/
package workflow

import (
	"errors"
	"fmt"
	"time"

	"github.com/warp/absence-engine/entity"
	"github.com/warp/absence-engine/envelope"
)

// =============================================================================
// ACTIONS AND ACTORS
// =============================================================================

// Action is what an actor asks the workflow to do.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionCancel  Action = "cancel"
)

// Actor is who is asking.
type Actor string

const (
	ActorManager  Actor = "manager"
	ActorEmployee Actor = "employee"
)

// ErrIllegalTransition is the sentinel behind every TransitionError.
var ErrIllegalTransition = errors.New("illegal workflow transition")

// TransitionError reports a disallowed (state, action, actor) combination
// or a missing comment. Recoverable: nothing was applied.
type TransitionError struct {
	State  entity.WorkflowState
	Action Action
	Actor  Actor
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s cannot %s in state %s: %s", e.Actor, e.Action, e.State, e.Reason)
}

func (e *TransitionError) Unwrap() error { return ErrIllegalTransition }

// =============================================================================
// TRANSITION FUNCTION
// =============================================================================

// reviewable is where manager approve/reject is still possible.
var reviewable = map[entity.WorkflowState]bool{
	entity.StateInitiated: true,
	entity.StateValidated: true,
	entity.StatePending:   true,
}

// Transition computes the result of applying action to state. It is pure:
// for every permitted pair it returns exactly one (newState, stateEvent),
// for every disallowed pair a TransitionError.
func Transition(state entity.WorkflowState, action Action, actor Actor, comment string) (entity.WorkflowState, entity.StateEvent, error) {
	fail := func(reason string) (entity.WorkflowState, entity.StateEvent, error) {
		return "", "", &TransitionError{State: state, Action: action, Actor: actor, Reason: reason}
	}

	if comment == "" {
		return fail("a comment is required")
	}

	switch action {
	case ActionApprove:
		if actor != ActorManager {
			return fail("only a manager may approve")
		}
		if !reviewable[state] {
			return fail("application is no longer under review")
		}
		return entity.StateApproved, entity.EventNext, nil

	case ActionReject:
		if actor != ActorManager {
			return fail("only a manager may reject")
		}
		if !reviewable[state] {
			return fail("application is no longer under review")
		}
		return entity.StateRejected, entity.EventReject, nil

	case ActionCancel:
		switch actor {
		case ActorManager:
			if !reviewable[state] && state != entity.StateApproved {
				return fail("application cannot be cancelled")
			}
			return entity.StateCancelled, entity.EventCancel, nil
		case ActorEmployee:
			if !reviewable[state] {
				return fail("application cannot be cancelled")
			}
			return entity.StateCancelled, entity.EventUserCancel, nil
		}
		return fail("unknown actor")

	default:
		return fail("unknown action")
	}
}

// =============================================================================
// APPLYING TRANSITIONS
// =============================================================================

// Update describes the entity a transition is being applied to: its id,
// target collection, current state, and current data block to merge into
// the update envelope.
type Update struct {
	ID         string
	Collection envelope.Collection
	State      entity.WorkflowState
	Data       map[string]any
}

// Outcome is the full result of a successful transition. The local state is
// adopted optimistically only after the backend round trip succeeds.
type Outcome struct {
	NewState   entity.WorkflowState
	StateEvent entity.StateEvent
	Envelope   *envelope.Submission
}

// Apply validates the transition and builds the update envelope merging the
// existing entity, the comment, the actor identity and a timestamp. On any
// error nothing is produced.
func Apply(header envelope.Header, u Update, action Action, actor Actor, actorID, comment string, now time.Time) (*Outcome, error) {
	newState, stateEvent, err := Transition(u.State, action, actor, comment)
	if err != nil {
		return nil, err
	}

	header.UploadedBy = actorID
	env := envelope.Update(header, u.Collection, u.ID, u.Data, stateEvent, comment, now)

	return &Outcome{NewState: newState, StateEvent: stateEvent, Envelope: env}, nil
}

// =============================================================================
// MANAGER QUEUE FILTER
// =============================================================================

// VisibleToManager reports whether an application belongs in the manager's
// pending queue. Employee self-cancellations are the employee's business.
func VisibleToManager(state entity.WorkflowState, stateEvent entity.StateEvent) bool {
	if stateEvent == entity.EventUserCancel {
		return false
	}
	return reviewable[state]
}

// FilterManagerQueue keeps only the applications a manager should see.
func FilterManagerQueue(apps []entity.LeaveApplication) []entity.LeaveApplication {
	var out []entity.LeaveApplication
	for _, a := range apps {
		if VisibleToManager(a.WorkflowState, a.StateEvent) {
			out = append(out, a)
		}
	}
	return out
}
