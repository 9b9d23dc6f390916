package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	domain "github.com/BruksfildServices01/medspa-api/internal/domain/inventory"
	"github.com/BruksfildServices01/medspa-api/internal/infra/mailer"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

type SweepResult struct {
	Checked int `json:"checked"`
	Opened  int `json:"opened"`
	Alerted int `json:"alerted"`
}

// SweepLowStock opens a notification for every product at or below its
// threshold and mails one digest of the notifications nobody was alerted of.
type SweepLowStock struct {
	repo       domain.Repository
	mailer     mailer.Mailer
	recipients []string
	now        func() time.Time
}

func NewSweepLowStock(repo domain.Repository, m mailer.Mailer, recipients []string) *SweepLowStock {
	return &SweepLowStock{
		repo:       repo,
		mailer:     m,
		recipients: recipients,
		now:        time.Now,
	}
}

func (uc *SweepLowStock) Execute(ctx context.Context) (*SweepResult, error) {
	ctx, span := tracer.Start(ctx, "SweepLowStock")
	defer span.End()

	products, err := uc.repo.ListLowStockProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}

	res := &SweepResult{Checked: len(products)}

	for _, candidate := range products {
		err := uc.repo.Transaction(ctx, func(tx domain.TxRepository) error {
			// stock may have moved since the list query
			p, err := tx.GetProductForUpdate(ctx, candidate.ID)
			if err != nil {
				return err
			}
			if !p.IsLowStock() {
				return nil
			}

			_, created, err := tx.EnsureOpenNotification(ctx, p)
			if created {
				res.Opened++
			}
			return err
		})
		if err != nil {
			zap.L().Error("low stock sweep failed for product",
				zap.Uint("product_id", candidate.ID),
				zap.Error(err),
			)
		}
	}

	if len(uc.recipients) == 0 {
		return res, nil
	}

	pending, err := uc.repo.ListUnalerted(ctx)
	if err != nil {
		return res, fmt.Errorf("list unalerted: %w", err)
	}
	if len(pending) == 0 {
		return res, nil
	}

	if err := uc.mailer.Send(ctx, DigestMessage(uc.recipients, pending)); err != nil {
		// left unalerted, the next sweep retries
		return res, fmt.Errorf("send low stock alert: %w", err)
	}

	ids := make([]uint, 0, len(pending))
	for _, n := range pending {
		ids = append(ids, n.ID)
	}
	if err := uc.repo.MarkAlerted(ctx, ids, uc.now()); err != nil {
		return res, fmt.Errorf("mark alerted: %w", err)
	}
	res.Alerted = len(ids)

	return res, nil
}

// DigestMessage lists every notification in one plain-text mail.
func DigestMessage(to []string, list []models.StockNotification) mailer.Message {
	var b strings.Builder
	b.WriteString("The following products need restocking:\n\n")
	for _, n := range list {
		msg := n.Message
		if n.Product.ID != 0 {
			msg = domain.LowStockMessage(n.Product)
		}
		fmt.Fprintf(&b, "- %s\n", msg)
	}

	subject := fmt.Sprintf("Low stock alert: %d product", len(list))
	if len(list) != 1 {
		subject += "s"
	}

	return mailer.Message{To: to, Subject: subject, Body: b.String()}
}
