package utils

import (
	"fmt"
	"math"

	"rentwear-backend/internal/domain"
)

// Split is the division of a gross rental amount between the platform, the
// center and the vendor.
type Split struct {
	Gross     int64 `json:"gross"`
	Admin     int64 `json:"admin"`
	Center    int64 `json:"center"`
	VendorNet int64 `json:"vendor_net"`
}

// ValidateRates checks commission percentages before they are used anywhere.
func ValidateRates(adminPct, centerPct float64) error {
	if adminPct < 0 || adminPct > 100 {
		return domain.NewValidationError("admin_commission_pct", "must be between 0 and 100")
	}
	if centerPct < 0 || centerPct > 100 {
		return domain.NewValidationError("center_share_pct", "must be between 0 and 100")
	}
	if adminPct+centerPct > 100 {
		return domain.NewValidationError("", fmt.Sprintf("commission percentages cannot exceed 100%% (got %.2f)", adminPct+centerPct))
	}
	return nil
}

// ComputeSplit derives admin commission, center share and vendor net from a
// gross amount. Admin and center shares are rounded to the nearest rupee and
// the vendor receives the remainder, so the three parts always sum to gross.
// The center share is capped so the vendor net never drops below zero.
func ComputeSplit(gross int64, adminPct, centerPct float64) (Split, error) {
	if gross < 0 {
		return Split{}, domain.NewValidationError("gross", "must be at least 0")
	}
	if err := ValidateRates(adminPct, centerPct); err != nil {
		return Split{}, err
	}
	admin := percentOf(gross, adminPct)
	center := min(percentOf(gross, centerPct), gross-admin)
	return Split{
		Gross:     gross,
		Admin:     admin,
		Center:    center,
		VendorNet: gross - admin - center,
	}, nil
}

// ComputeGST returns the tax due on amount at pct percent.
func ComputeGST(amount int64, pct float64) int64 {
	if amount <= 0 || pct <= 0 {
		return 0
	}
	return percentOf(amount, pct)
}

// DepositRefund is what goes back to the customer after damage is deducted.
func DepositRefund(deposit, damage int64) int64 {
	if damage <= 0 {
		return deposit
	}
	if damage >= deposit {
		return 0
	}
	return deposit - damage
}

func percentOf(amount int64, pct float64) int64 {
	return int64(math.Round(float64(amount) * pct / 100))
}
