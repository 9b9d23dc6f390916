package payment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/medspa-api/internal/audit"
	domain "github.com/BruksfildServices01/medspa-api/internal/domain/payment"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

// transition moves a locked payment to next and writes its audit row in the
// same transaction. A payment already in next is left untouched.
func transition(
	ctx context.Context,
	tx domain.TxRepository,
	p *models.Payment,
	next domain.Status,
	actorID *uint,
	source string,
	now time.Time,
) error {

	if domain.Status(p.Status) == next {
		return nil
	}
	if err := domain.CanTransition(domain.Status(p.Status), next); err != nil {
		return err
	}

	p.Status = string(next)
	if next == domain.StatusCompleted {
		p.CompletedAt = &now
	}

	if err := tx.Update(ctx, p); err != nil {
		return err
	}

	data := snapshot(p)
	data["source"] = source

	return tx.Audit(ctx, audit.Entry{
		UserID:   actorID,
		Action:   "UPDATE",
		Table:    "payments",
		RecordID: &p.ID,
		Data:     data,
	})
}

// snapshot is the new_data recorded for a payment.
func snapshot(p *models.Payment) map[string]any {
	data := map[string]any{
		"client_id":      p.ClientID,
		"amount":         p.Amount.StringFixed(2),
		"tips":           p.Tips.StringFixed(2),
		"commission":     p.Commission.StringFixed(2),
		"payment_method": p.PaymentMethod,
		"status":         p.Status,
	}
	if p.AppointmentID != nil {
		data["appointment_id"] = *p.AppointmentID
	}
	if p.PackageID != nil {
		data["package_id"] = *p.PackageID
	}
	if p.ProviderIntentID != nil {
		data["provider_intent_id"] = *p.ProviderIntentID
	}
	return data
}
