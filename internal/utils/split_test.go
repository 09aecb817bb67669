package utils

import (
	"testing"

	"rentwear-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSplit(t *testing.T) {
	tests := []struct {
		name      string
		gross     int64
		adminPct  float64
		centerPct float64
		expected  Split
	}{
		{"Standard rates", 2500, 15, 10, Split{Gross: 2500, Admin: 375, Center: 250, VendorNet: 1875}},
		{"Bridal lehenga", 8000, 15, 10, Split{Gross: 8000, Admin: 1200, Center: 800, VendorNet: 6000}},
		{"Rounding half up", 3333, 15, 10, Split{Gross: 3333, Admin: 500, Center: 333, VendorNet: 2500}},
		{"No commission", 1000, 0, 0, Split{Gross: 1000, VendorNet: 1000}},
		{"Zero gross", 0, 15, 10, Split{}},
		{"Full commission on one rupee", 1, 50, 50, Split{Gross: 1, Admin: 1, Center: 0, VendorNet: 0}},
		{"Full commission on three rupees", 3, 50, 50, Split{Gross: 3, Admin: 2, Center: 1, VendorNet: 0}},
		{"Full commission on five rupees", 5, 50, 50, Split{Gross: 5, Admin: 3, Center: 2, VendorNet: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			split, err := ComputeSplit(tt.gross, tt.adminPct, tt.centerPct)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, split)
			assert.Equal(t, tt.gross, split.Admin+split.Center+split.VendorNet)
			assert.GreaterOrEqual(t, split.VendorNet, int64(0))
		})
	}

	t.Run("Rates above 100 percent", func(t *testing.T) {
		_, err := ComputeSplit(1000, 60, 50)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Contains(t, err.Error(), "cannot exceed 100%")
	})

	t.Run("Negative rate", func(t *testing.T) {
		_, err := ComputeSplit(1000, -1, 10)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("Negative gross", func(t *testing.T) {
		_, err := ComputeSplit(-5, 15, 10)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestComputeGST(t *testing.T) {
	assert.Equal(t, int64(450), ComputeGST(2500, 18))
	assert.Equal(t, int64(1440), ComputeGST(8000, 18))
	assert.Equal(t, int64(0), ComputeGST(0, 18))
	assert.Equal(t, int64(0), ComputeGST(2500, 0))
}

func TestDepositRefund(t *testing.T) {
	assert.Equal(t, int64(5000), DepositRefund(5000, 0))
	assert.Equal(t, int64(4200), DepositRefund(5000, 800))
	assert.Equal(t, int64(0), DepositRefund(5000, 5000))
	assert.Equal(t, int64(0), DepositRefund(5000, 9000))
}
