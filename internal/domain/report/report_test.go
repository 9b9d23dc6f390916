package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/medspa-api/internal/httperr"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity("")
	require.NoError(t, err)
	assert.Equal(t, Daily, g)

	g, err = ParseGranularity("monthly")
	require.NoError(t, err)
	assert.Equal(t, "month", g.TruncUnit())
	assert.Equal(t, "2006-01", g.Layout())

	_, err = ParseGranularity("weekly")
	assert.True(t, httperr.IsBusiness(err, "invalid_granularity"))
}

func TestTruncUnit(t *testing.T) {
	assert.Equal(t, "day", Daily.TruncUnit())
	assert.Equal(t, "month", Monthly.TruncUnit())
	assert.Equal(t, "year", Yearly.TruncUnit())
}

func TestResolveRangeDefaults(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

	r, err := ResolveRange(nil, nil, now)
	require.NoError(t, err)
	assert.Equal(t, now, r.End)
	assert.Equal(t, time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC), r.Start)
}

func TestResolveRangeDateOnlyEndCoversDay(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	r, err := ResolveRange(&start, &end, time.Now())
	require.NoError(t, err)
	assert.Equal(t, start, r.Start)
	assert.True(t, r.End.After(time.Date(2025, 1, 31, 23, 59, 0, 0, time.UTC)))
	assert.True(t, r.End.Before(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)))
}

func TestResolveRangeRejectsInverted(t *testing.T) {
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	_, err := ResolveRange(&start, &end, time.Now())
	assert.True(t, httperr.IsBusiness(err, "invalid_date_range"))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]Bucket{
		{Revenue: d("300.00"), Tips: d("20.00"), Commission: d("30.00"), Transactions: 2},
		{Revenue: d("150.00"), Tips: d("0"), Commission: d("15.00"), Transactions: 1},
	})

	assert.True(t, d("450.00").Equal(s.TotalRevenue))
	assert.True(t, d("20.00").Equal(s.TotalTips))
	assert.True(t, d("45.00").Equal(s.TotalCommission))
	assert.Equal(t, int64(3), s.TransactionCount)
	assert.True(t, d("150.00").Equal(s.AverageTransaction))
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)

	assert.Equal(t, int64(0), s.TransactionCount)
	assert.True(t, s.TotalRevenue.IsZero())
	assert.True(t, s.AverageTransaction.IsZero())
}
