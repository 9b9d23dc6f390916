package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/BruksfildServices01/medspa-api/internal/httperr"
)

// ===============================
// Granularity
// ===============================

type Granularity string

const (
	Daily   Granularity = "daily"
	Monthly Granularity = "monthly"
	Yearly  Granularity = "yearly"
)

// ParseGranularity defaults to daily when s is empty.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case "":
		return Daily, nil
	case Daily, Monthly, Yearly:
		return Granularity(s), nil
	}
	return "", httperr.ErrBusiness("invalid_granularity")
}

// TruncUnit is the date_trunc field for g.
func (g Granularity) TruncUnit() string {
	switch g {
	case Monthly:
		return "month"
	case Yearly:
		return "year"
	}
	return "day"
}

// Layout formats a bucket start as its period label.
func (g Granularity) Layout() string {
	switch g {
	case Monthly:
		return "2006-01"
	case Yearly:
		return "2006"
	}
	return "2006-01-02"
}

// ===============================
// Range
// ===============================

type Range struct {
	Start time.Time
	End   time.Time
}

// ResolveRange applies the defaults: end is now, start is one year before end.
// Date-only bounds cover whole days.
func ResolveRange(start, end *time.Time, now time.Time) (Range, error) {
	r := Range{End: now}
	if end != nil {
		r.End = endOfDay(*end)
	}

	r.Start = r.End.AddDate(-1, 0, 0)
	if start != nil {
		r.Start = *start
	}

	if r.Start.After(r.End) {
		return Range{}, httperr.ErrBusiness("invalid_date_range")
	}
	return r, nil
}

func endOfDay(t time.Time) time.Time {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Add(24*time.Hour - time.Nanosecond)
	}
	return t
}

// ===============================
// Results
// ===============================

type Bucket struct {
	Period       time.Time
	Revenue      decimal.Decimal
	Tips         decimal.Decimal
	Commission   decimal.Decimal
	Transactions int64
}

type Summary struct {
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	TotalTips          decimal.Decimal `json:"total_tips"`
	TotalCommission    decimal.Decimal `json:"total_commission"`
	TransactionCount   int64           `json:"transaction_count"`
	AverageTransaction decimal.Decimal `json:"average_transaction"`
}

// Summarize totals the buckets. The average divides by max(count, 1).
func Summarize(buckets []Bucket) Summary {
	s := Summary{
		TotalRevenue:    decimal.Zero,
		TotalTips:       decimal.Zero,
		TotalCommission: decimal.Zero,
	}

	for _, b := range buckets {
		s.TotalRevenue = s.TotalRevenue.Add(b.Revenue)
		s.TotalTips = s.TotalTips.Add(b.Tips)
		s.TotalCommission = s.TotalCommission.Add(b.Commission)
		s.TransactionCount += b.Transactions
	}

	n := s.TransactionCount
	if n < 1 {
		n = 1
	}
	s.AverageTransaction = s.TotalRevenue.Div(decimal.NewFromInt(n)).Round(2)

	return s
}

type StaffRow struct {
	StaffID      uint
	StaffName    string
	Revenue      decimal.Decimal
	Tips         decimal.Decimal
	Commission   decimal.Decimal
	Transactions int64
}

type Filter struct {
	Range       Range
	Granularity Granularity
	LocationID  *uint
	// Timezone is the IANA zone periods are cut in. Empty means UTC.
	Timezone string
}
