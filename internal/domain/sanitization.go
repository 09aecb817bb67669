package domain

import "time"

type SanitizationStatus string

const (
	SanitizationStatusApproved        SanitizationStatus = "approved"
	SanitizationStatusRecleanRequired SanitizationStatus = "recleanRequired"
)

func (s SanitizationStatus) Valid() bool {
	return s == SanitizationStatusApproved || s == SanitizationStatusRecleanRequired
}

type CleaningType string

const (
	CleaningTypeDryClean CleaningType = "dry_clean"
	CleaningTypeSteam    CleaningType = "steam"
	CleaningTypeUV       CleaningType = "uv"
	CleaningTypeChemical CleaningType = "chemical"
	CleaningTypeCombined CleaningType = "combined"
)

func (c CleaningType) Valid() bool {
	switch c {
	case CleaningTypeDryClean, CleaningTypeSteam, CleaningTypeUV, CleaningTypeChemical, CleaningTypeCombined:
		return true
	}
	return false
}

// SanitizationRecord is an append-only audit entry. TagID is set if and only
// if Status is approved; the tag authorizes handover of the order.
type SanitizationRecord struct {
	ID             string             `json:"id"`
	OrderID        string             `json:"order_id" validate:"required"`
	ProductID      string             `json:"product_id"`
	CenterID       string             `json:"center_id"`
	CleaningType   CleaningType       `json:"cleaning_type" validate:"required"`
	ChemicalUsed   string             `json:"chemical_used"`
	StaffName      string             `json:"staff_name" validate:"required"`
	DateTime       time.Time          `json:"date_time"`
	BeforeImageURL string             `json:"before_image_url,omitempty"`
	AfterImageURL  string             `json:"after_image_url,omitempty"`
	Status         SanitizationStatus `json:"status" validate:"required"`
	TagID          string             `json:"tag_id,omitempty"`
}

func (r *SanitizationRecord) HasValidTag() bool {
	return r.Status == SanitizationStatusApproved && r.TagID != ""
}
