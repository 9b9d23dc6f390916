package appointment

import "github.com/BruksfildServices01/medspa-api/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
	StatusNoShow    Status = "no_show"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCanceled, StatusNoShow:
		return Status(s), nil
	}
	return "", httperr.ErrBusiness("invalid_status")
}

// IsOpen reports whether the appointment still holds its time slot.
func (s Status) IsOpen() bool {
	return s == StatusScheduled || s == StatusConfirmed
}

// OpenStatuses are the statuses that block a staff member's calendar.
func OpenStatuses() []string {
	return []string{string(StatusScheduled), string(StatusConfirmed)}
}

// ===============================
// Validations
// ===============================

func CanConfirm(current Status) error {
	if current != StatusScheduled {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanCancel(current Status) error {
	if !current.IsOpen() {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanComplete(current Status) error {
	if !current.IsOpen() {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

func CanMarkNoShow(current Status) error {
	if !current.IsOpen() {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// CanReschedule rejects time changes on closed appointments.
func CanReschedule(current Status) error {
	if !current.IsOpen() {
		return httperr.ErrBusiness("appointment_closed")
	}
	return nil
}

func InitialStatus() Status {
	return StatusScheduled
}
