package orders

import (
	"fmt"

	"alphastore/models"
)

var validNext = map[models.OrderStatus]map[models.OrderStatus]bool{
	models.OrderPending:    {models.OrderApproved: true, models.OrderCancelled: true},
	models.OrderApproved:   {models.OrderHandedOver: true},
	models.OrderCancelled:  {},
	models.OrderHandedOver: {},
}

func CanTransition(from, to models.OrderStatus) bool {
	return validNext[from][to]
}

// ValidStatus reports whether s is one of the known order states.
func ValidStatus(s models.OrderStatus) bool {
	_, ok := validNext[s]
	return ok
}

// TransitionError reports a status change the workflow does not allow.
type TransitionError struct {
	From models.OrderStatus
	To   models.OrderStatus
}

func (e *TransitionError) Error() string {
	if e.To == models.OrderHandedOver {
		return fmt.Sprintf("order can only be handed over once approved, current status is %s", e.From)
	}
	return fmt.Sprintf("cannot change status from %s to %s", e.From, e.To)
}

// FraudConfirmationError is returned when a flagged order is moved without
// the caller confirming they reviewed the fraud warning.
type FraudConfirmationError struct {
	Reason string
}

func (e *FraudConfirmationError) Error() string {
	return "order is flagged as potentially fraudulent: " + e.Reason
}
