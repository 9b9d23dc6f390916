package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/medspa-api/internal/httperr"
	"github.com/BruksfildServices01/medspa-api/internal/models"
)

func TestNewStock(t *testing.T) {
	cases := []struct {
		name string
		typ  AdjustmentType
		prev int
		qty  int
		want int
	}{
		{"add", AdjustAdd, 10, 5, 15},
		{"remove", AdjustRemove, 10, 4, 6},
		{"remove to zero", AdjustRemove, 4, 4, 0},
		{"remove floors at zero", AdjustRemove, 10, 15, 0},
		{"set", AdjustSet, 10, 3, 3},
		{"set zero", AdjustSet, 10, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NewStock(tc.typ, tc.prev, tc.qty)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNewStockRejectsNegativeQuantity(t *testing.T) {
	_, err := NewStock(AdjustAdd, 10, -1)
	assert.True(t, httperr.IsBusiness(err, "invalid_quantity"))
}

func TestParseAdjustmentType(t *testing.T) {
	typ, err := ParseAdjustmentType("remove")
	require.NoError(t, err)
	assert.Equal(t, AdjustRemove, typ)

	_, err = ParseAdjustmentType("subtract")
	assert.True(t, httperr.IsBusiness(err, "invalid_adjustment_type"))
}

func TestLowStockMessage(t *testing.T) {
	p := models.Product{Name: "Hyaluronic Serum", SKU: "HS-30", CurrentStock: 2, LowStockThreshold: 5}
	assert.Equal(t, "Hyaluronic Serum (HS-30) is low on stock: 2 left, threshold 5", LowStockMessage(p))

	p.CurrentStock = 0
	assert.Equal(t, "Hyaluronic Serum (HS-30) is out of stock", LowStockMessage(p))
}
