package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/medspa-api/internal/audit"
	domain "github.com/BruksfildServices01/medspa-api/internal/domain/payment"
	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

type UpdatePaymentInput struct {
	Tips    *decimal.Decimal
	Status  *string
	ActorID uint
}

// UpdatePayment edits tips and status. Commission is never recomputed.
type UpdatePayment struct {
	repo domain.Repository
	now  func() time.Time
}

func NewUpdatePayment(repo domain.Repository) *UpdatePayment {
	return &UpdatePayment{repo: repo, now: time.Now}
}

func (uc *UpdatePayment) Execute(
	ctx context.Context,
	id uint,
	in UpdatePaymentInput,
) (*models.Payment, error) {

	ctx, span := tracer.Start(ctx, "UpdatePayment")
	defer span.End()

	var next domain.Status
	if in.Status != nil {
		s, err := domain.ParseStatus(*in.Status)
		if err != nil {
			return nil, err
		}
		next = s
	}
	if in.Tips != nil && in.Tips.IsNegative() {
		return nil, httperr.ErrBusiness("invalid_tips")
	}

	var out *models.Payment
	err := uc.repo.Transaction(ctx, func(tx domain.TxRepository) error {
		p, err := tx.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}

		if p.Status == string(domain.StatusCompleted) {
			return httperr.ErrConflict("payment_immutable")
		}

		if next != "" && next != domain.Status(p.Status) {
			if err := domain.CanTransition(domain.Status(p.Status), next); err != nil {
				return err
			}
			if next == domain.StatusCompleted && p.PaymentMethod == string(domain.MethodStripe) {
				return httperr.ErrBusiness("card_payment_requires_confirmation")
			}
			if next == domain.StatusFailed {
				return httperr.ErrBusiness("invalid_status_transition")
			}

			p.Status = string(next)
			if next == domain.StatusCompleted {
				now := uc.now()
				p.CompletedAt = &now
			}
		}

		if in.Tips != nil {
			p.Tips = *in.Tips
		}

		if err := tx.Update(ctx, p); err != nil {
			return err
		}
		out = p

		return tx.Audit(ctx, audit.Entry{
			UserID:   &in.ActorID,
			Action:   "UPDATE",
			Table:    "payments",
			RecordID: &p.ID,
			Data:     snapshot(p),
		})
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
