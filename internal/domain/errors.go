package domain

import "errors"

var (
	ErrValidation                = errors.New("validation failed")
	ErrTrainNotFound             = errors.New("train not found")
	ErrReservationNotFound       = errors.New("reservation not found")
	ErrCustomerNotFound          = errors.New("customer not found")
	ErrInsufficientSeats         = errors.New("insufficient seats available")
	ErrNotCancellable            = errors.New("reservation cannot be cancelled")
	ErrInvalidCredentials        = errors.New("invalid login id or password")
	ErrCustomerExists            = errors.New("customer already registered")
	ErrDuplicateConfirmationCode = errors.New("confirmation code already in use")
	ErrTrainBusy                 = errors.New("train is locked by another booking")
	ErrInvalidStatusTransition   = errors.New("invalid reservation status transition")
)
