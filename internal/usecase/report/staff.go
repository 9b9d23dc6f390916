package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	domain "github.com/BruksfildServices01/medspa-api/internal/domain/report"
)

type StaffReportInput struct {
	StartDate  *time.Time
	EndDate    *time.Time
	LocationID *uint
}

type StaffReportRow struct {
	StaffID            uint            `json:"staff_id" csv:"staff_id"`
	StaffName          string          `json:"staff_name" csv:"staff_name"`
	Revenue            decimal.Decimal `json:"revenue" csv:"revenue"`
	Tips               decimal.Decimal `json:"tips" csv:"tips"`
	Commission         decimal.Decimal `json:"commission" csv:"commission"`
	Transactions       int64           `json:"transactions" csv:"transactions"`
	AverageTransaction decimal.Decimal `json:"average_transaction" csv:"average_transaction"`
}

// StaffReport attributes completed payments to the staff member of the linked
// appointment. Payments without an appointment are not attributed.
type StaffReport struct {
	repo domain.Repository
	tz   string
	now  func() time.Time
}

func NewStaffReport(repo domain.Repository, tz string) *StaffReport {
	return &StaffReport{repo: repo, tz: tz, now: time.Now}
}

func (uc *StaffReport) Execute(
	ctx context.Context,
	in StaffReportInput,
) ([]StaffReportRow, error) {

	ctx, span := tracer.Start(ctx, "StaffReport")
	defer span.End()

	r, err := domain.ResolveRange(in.StartDate, in.EndDate, uc.now())
	if err != nil {
		return nil, err
	}

	rows, err := uc.repo.RevenueByStaff(ctx, domain.Filter{
		Range:      r,
		LocationID: in.LocationID,
		Timezone:   uc.tz,
	})
	if err != nil {
		return nil, fmt.Errorf("revenue by staff: %w", err)
	}

	out := make([]StaffReportRow, 0, len(rows))
	for _, row := range rows {
		s := domain.Summarize([]domain.Bucket{{
			Revenue:      row.Revenue,
			Tips:         row.Tips,
			Commission:   row.Commission,
			Transactions: row.Transactions,
		}})

		out = append(out, StaffReportRow{
			StaffID:            row.StaffID,
			StaffName:          row.StaffName,
			Revenue:            row.Revenue,
			Tips:               row.Tips,
			Commission:         row.Commission,
			Transactions:       row.Transactions,
			AverageTransaction: s.AverageTransaction,
		})
	}

	return out, nil
}
