package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/medspa-api/internal/domain/report"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

type ReportGormRepository struct {
	db *gorm.DB
}

func NewReportGormRepository(db *gorm.DB) *ReportGormRepository {
	return &ReportGormRepository{db: db}
}

func (r *ReportGormRepository) completed(ctx context.Context, f domain.Filter) *gorm.DB {
	return completedPayments(r.db.WithContext(ctx), f)
}

func completedPayments(db *gorm.DB, f domain.Filter) *gorm.DB {
	q := db.
		Model(&models.Payment{}).
		Where("payments.status = ?", "completed").
		Where("payments.created_at BETWEEN ? AND ?", f.Range.Start, f.Range.End)

	if f.LocationID != nil {
		q = q.Where("payments.location_id = ?", *f.LocationID)
	}
	return q
}

// revenueBuckets groups q by period. Periods are cut on the clinic's wall
// clock, so an evening payment stays on its local day.
func revenueBuckets(q *gorm.DB, f domain.Filter) *gorm.DB {
	tz := f.Timezone
	if tz == "" {
		tz = "UTC"
	}
	return q.
		Select(`
            date_trunc(?, payments.created_at AT TIME ZONE ?) AS period,
            COALESCE(SUM(payments.amount), 0) AS revenue,
            COALESCE(SUM(payments.tips), 0) AS tips,
            COALESCE(SUM(payments.commission), 0) AS commission,
            COUNT(*) AS transactions
        `, f.Granularity.TruncUnit(), tz).
		Group("period").
		Order("period ASC")
}

type bucketRow struct {
	Period       time.Time
	Revenue      decimal.Decimal
	Tips         decimal.Decimal
	Commission   decimal.Decimal
	Transactions int64
}

func (r *ReportGormRepository) RevenueBuckets(
	ctx context.Context,
	f domain.Filter,
) ([]domain.Bucket, error) {

	var rows []bucketRow
	if err := revenueBuckets(r.completed(ctx, f), f).Scan(&rows).Error; err != nil {
		return nil, err
	}

	buckets := make([]domain.Bucket, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, domain.Bucket(row))
	}
	return buckets, nil
}

type staffRow struct {
	StaffID      uint
	StaffName    string
	Revenue      decimal.Decimal
	Tips         decimal.Decimal
	Commission   decimal.Decimal
	Transactions int64
}

func (r *ReportGormRepository) RevenueByStaff(
	ctx context.Context,
	f domain.Filter,
) ([]domain.StaffRow, error) {

	var rows []staffRow
	if err := r.completed(ctx, f).
		Select(`
            users.id AS staff_id,
            users.name AS staff_name,
            COALESCE(SUM(payments.amount), 0) AS revenue,
            COALESCE(SUM(payments.tips), 0) AS tips,
            COALESCE(SUM(payments.commission), 0) AS commission,
            COUNT(*) AS transactions
        `).
		Joins("JOIN appointments ON appointments.id = payments.appointment_id").
		Joins("JOIN users ON users.id = appointments.staff_id").
		Group("users.id, users.name").
		Order("revenue DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.StaffRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.StaffRow(row))
	}
	return out, nil
}

var _ domain.Repository = (*ReportGormRepository)(nil)
