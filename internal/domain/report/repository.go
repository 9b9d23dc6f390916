package report

import "context"

type Repository interface {
	// RevenueBuckets aggregates completed payments per period.
	RevenueBuckets(ctx context.Context, f Filter) ([]Bucket, error)
	RevenueByStaff(ctx context.Context, f Filter) ([]StaffRow, error)
}
