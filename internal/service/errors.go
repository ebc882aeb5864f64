package service

import (
	"errors"
	"fmt"

	"github.com/tableorder/api/internal/database"
)

// Errors returned by the order and account services.
var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrTableNotFound      = errors.New("table not found")
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrMenuItemNotFound   = errors.New("menu item not found")

	ErrEmptyItems           = errors.New("items are required")
	ErrCustomerNameRequired = errors.New("customer_name is required")
	ErrInvalidQuantity      = errors.New("quantity must be > 0")
	ErrInvalidPrice         = errors.New("invalid price")
	ErrInvalidMenuItemID    = errors.New("invalid menu_item_id")
	ErrInvalidStatus        = errors.New("invalid status")
	ErrInvalidTableNumber   = errors.New("table_number must be > 0")
	ErrDeviceIDRequired     = errors.New("device id is required")

	ErrAlreadyProcessed  = errors.New("order already processed")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrGateway           = errors.New("payment gateway error")
	ErrAccountExists     = errors.New("payment account already exists")
)

// ConflictError is returned when a payment or confirmation would hit an
// order that is already paid. Status is the order's current status.
type ConflictError struct {
	Status database.OrderStatus
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("order already processed: status %s", e.Status)
}

func (e *ConflictError) Is(target error) bool { return target == ErrAlreadyProcessed }

// TransitionError is returned for moves the state machine does not allow.
type TransitionError struct {
	From database.OrderStatus
	To   database.OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// IsValidation reports whether err is an input error that maps to 400.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrEmptyItems, ErrCustomerNameRequired, ErrInvalidQuantity, ErrInvalidPrice,
		ErrInvalidMenuItemID, ErrInvalidStatus, ErrInvalidTableNumber, ErrDeviceIDRequired,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsNotFound reports whether err is a missing-entity error that maps to 404.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrTableNotFound) ||
		errors.Is(err, ErrRestaurantNotFound) || errors.Is(err, ErrMenuItemNotFound)
}
