package payment

import "github.com/BruksfildServices01/medspa-api/internal/httperr"

// ===============================
// Payment Method / Status
// ===============================

type Method string

const (
	MethodStripe Method = "stripe"
	MethodCash   Method = "cash"
)

func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodStripe, MethodCash:
		return Method(s), nil
	}
	return "", httperr.ErrBusiness("invalid_payment_method")
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
	StatusFailed    Status = "failed"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusCompleted, StatusCanceled, StatusFailed:
		return Status(s), nil
	}
	return "", httperr.ErrBusiness("invalid_status")
}

// InitialStatus is completed for cash and pending for card payments.
func InitialStatus(m Method) Status {
	if m == MethodCash {
		return StatusCompleted
	}
	return StatusPending
}

// ===============================
// Transitions
// ===============================

// CanTransition reports whether a payment may move from current to next.
// Completed payments are immutable.
func CanTransition(current, next Status) error {
	if current == next {
		return nil
	}

	switch current {
	case StatusCompleted:
		return httperr.ErrConflict("payment_immutable")
	case StatusPending:
		switch next {
		case StatusCompleted, StatusCanceled, StatusFailed:
			return nil
		}
	case StatusFailed:
		// a failed card attempt can still succeed on retry at the provider
		if next == StatusCompleted {
			return nil
		}
	}

	return httperr.ErrBusiness("invalid_status_transition")
}
