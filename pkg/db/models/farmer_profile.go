package models

import (
	"time"

	"github.com/google/uuid"
)

// FarmerProfile is the role-specific profile owned by a FARMER user.
// Crops and Documents hold JSON-encoded lists so the column works on both
// engines.
type FarmerProfile struct {
	ID                 uuid.UUID  `gorm:"column:id;type:text;primaryKey"`
	UserID             uuid.UUID  `gorm:"column:user_id;type:text;not null;uniqueIndex"`
	User               *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	State              string     `gorm:"column:state"`
	District           string     `gorm:"column:district"`
	Village            string     `gorm:"column:village"`
	AadhaarNumber      *string    `gorm:"column:aadhaar_number"`
	FarmSize           float64    `gorm:"column:farm_size;not null;default:0"`
	Crops              string     `gorm:"column:crops;type:text"`
	FPOMembership      *string    `gorm:"column:fpo_membership"`
	BankAccountNumber  *string    `gorm:"column:bank_account_number"`
	BankIFSC           *string    `gorm:"column:bank_ifsc"`
	BankHolderName     *string    `gorm:"column:bank_holder_name"`
	Documents          *string    `gorm:"column:documents;type:text"`
	VerificationStatus string     `gorm:"column:verification_status;not null;default:PENDING"`
	VerificationNotes  *string    `gorm:"column:verification_notes"`
	VerifiedBy         *uuid.UUID `gorm:"column:verified_by;type:text"`
	VerifiedAt         *time.Time `gorm:"column:verified_at"`
}
