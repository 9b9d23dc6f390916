package models

// All lists every model in migration order.
func All() []any {
	return []any{
		&Location{},
		&User{},
		&Client{},
		&Service{},
		&Package{},
		&Appointment{},
		&Payment{},
		&Product{},
		&StockAdjustment{},
		&StockNotification{},
		&ConsentForm{},
		&Treatment{},
		&TreatmentPhoto{},
		&AuditLog{},
	}
}
