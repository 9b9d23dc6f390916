package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"

	domain "github.com/BruksfildServices01/medspa-api/internal/domain/report"
)

var tracer = otel.Tracer("medspa-api/usecase/report")

type RevenueReportInput struct {
	Granularity string
	StartDate   *time.Time
	EndDate     *time.Time
	LocationID  *uint
}

// SeriesRow is one period of the revenue series. The csv tags drive the export.
type SeriesRow struct {
	Period       string          `json:"period" csv:"period"`
	Revenue      decimal.Decimal `json:"revenue" csv:"revenue"`
	Tips         decimal.Decimal `json:"tips" csv:"tips"`
	Commission   decimal.Decimal `json:"commission" csv:"commission"`
	Transactions int64           `json:"transactions" csv:"transactions"`
}

type RevenueReportOutput struct {
	Granularity domain.Granularity `json:"granularity"`
	StartDate   time.Time          `json:"start_date"`
	EndDate     time.Time          `json:"end_date"`
	Summary     domain.Summary     `json:"summary"`
	Series      []SeriesRow        `json:"series"`
}

type RevenueReport struct {
	repo domain.Repository
	tz   string
	now  func() time.Time
}

// NewRevenueReport cuts periods in the tz zone.
func NewRevenueReport(repo domain.Repository, tz string) *RevenueReport {
	return &RevenueReport{repo: repo, tz: tz, now: time.Now}
}

func (uc *RevenueReport) Execute(
	ctx context.Context,
	in RevenueReportInput,
) (*RevenueReportOutput, error) {

	ctx, span := tracer.Start(ctx, "RevenueReport")
	defer span.End()

	g, err := domain.ParseGranularity(in.Granularity)
	if err != nil {
		return nil, err
	}
	r, err := domain.ResolveRange(in.StartDate, in.EndDate, uc.now())
	if err != nil {
		return nil, err
	}

	buckets, err := uc.repo.RevenueBuckets(ctx, domain.Filter{
		Range:       r,
		Granularity: g,
		LocationID:  in.LocationID,
		Timezone:    uc.tz,
	})
	if err != nil {
		return nil, fmt.Errorf("revenue buckets: %w", err)
	}

	series := make([]SeriesRow, 0, len(buckets))
	for _, b := range buckets {
		series = append(series, SeriesRow{
			Period:       b.Period.Format(g.Layout()),
			Revenue:      b.Revenue,
			Tips:         b.Tips,
			Commission:   b.Commission,
			Transactions: b.Transactions,
		})
	}

	return &RevenueReportOutput{
		Granularity: g,
		StartDate:   r.Start,
		EndDate:     r.End,
		Summary:     domain.Summarize(buckets),
		Series:      series,
	}, nil
}
