package statemachine

import (
	"strings"

	"github.com/Shashank-1177/SBFood/apperr"
	"github.com/Shashank-1177/SBFood/models"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor string             `json:"actor"`
}

const (
	actorStaff = "restaurant or admin"
	actorAny   = "customer, restaurant or admin"
)

// validTransitions is the authoritative state machine definition
var validTransitions = func() []Transition {
	forward := []models.OrderStatus{
		models.StatusPlaced,
		models.StatusConfirmed,
		models.StatusPreparing,
		models.StatusReady,
		models.StatusPickedUp,
		models.StatusDelivered,
	}
	var ts []Transition
	for i := 0; i+1 < len(forward); i++ {
		ts = append(ts, Transition{From: forward[i], To: forward[i+1], Actor: actorStaff})
		// cancellation is reachable from every non-terminal state
		ts = append(ts, Transition{From: forward[i], To: models.StatusCancelled, Actor: actorAny})
	}
	return ts
}()

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	From models.OrderStatus
	To   models.OrderStatus
}

var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	nexts := []models.OrderStatus{}
	for _, t := range validTransitions {
		if t.From == status {
			nexts = append(nexts, t.To)
		}
	}
	return nexts
}

// CanTransition checks if an order may move from one state to another.
// Only the immediate successor or cancellation is accepted.
func CanTransition(from, to models.OrderStatus) error {
	if transitionMap[transitionKey{From: from, To: to}] {
		return nil
	}
	return apperr.New(apperr.ErrInvalidTransition,
		"Invalid transition: %s → %s. Valid transitions from %s are: %s",
		from, to, from, describeValidFrom(from),
	).WithDetail("currentStatus", from).
		WithDetail("requested", to).
		WithDetail("validNextStates", ValidTransitionsFrom(from))
}

// CanForce checks an administrative override: any valid target, but never
// out of a terminal state.
func CanForce(from, to models.OrderStatus) error {
	if !to.Valid() {
		return apperr.Validation("Invalid status")
	}
	if from.Terminal() {
		return apperr.New(apperr.ErrInvalidTransition, "Order is already %s", from).
			WithDetail("currentStatus", from)
	}
	if from == to {
		return apperr.New(apperr.ErrInvalidTransition, "Order is already %s", from).
			WithDetail("currentStatus", from)
	}
	return nil
}

func describeValidFrom(status models.OrderStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	parts := make([]string, len(nexts))
	for i, s := range nexts {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
