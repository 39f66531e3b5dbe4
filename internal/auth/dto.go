package auth

import (
	"time"

	"github.com/farmdirect/farmdirect-backend/pkg/db/models"
	"github.com/farmdirect/farmdirect-backend/pkg/enums"
	"github.com/google/uuid"
)

// StartRequest begins either registration or login for a mobile number.
type StartRequest struct {
	Mobile string `json:"mobile" validate:"required,min=10,max=15"`
}

// ChallengeResponse acknowledges an OTP issuance. OTP is only populated in
// dev deployments where the SMS gateway is bypassed.
type ChallengeResponse struct {
	Message string `json:"message"`
	OTPID   string `json:"otp_id"`
	OTP     string `json:"otp,omitempty"`
}

// RegisterCompleteRequest finishes registration. The role selects which of
// the profile field groups is read; the rest are ignored.
type RegisterCompleteRequest struct {
	OTPID    string `json:"otp_id" validate:"required"`
	OTP      string `json:"otp" validate:"required,len=6"`
	Mobile   string `json:"mobile" validate:"required,min=10,max=15"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required"`
	Language string `json:"language,omitempty"`

	// FARMER fields.
	State    string   `json:"state,omitempty"`
	District string   `json:"district,omitempty"`
	Village  string   `json:"village,omitempty"`
	FarmSize float64  `json:"farm_size,omitempty"`
	Crops    []string `json:"crops,omitempty"`

	// RETAILER fields.
	ShopName    string `json:"shop_name,omitempty"`
	ShopAddress string `json:"shop_address,omitempty"`

	// DELIVERY fields.
	VehicleType   string `json:"vehicle_type,omitempty"`
	VehicleNumber string `json:"vehicle_number,omitempty"`
}

// VerifyRequest consumes a previously issued challenge.
type VerifyRequest struct {
	OTPID  string `json:"otp_id" validate:"required"`
	OTP    string `json:"otp" validate:"required,len=6"`
	Mobile string `json:"mobile" validate:"required,min=10,max=15"`
}

// UserView is the outward shape of a user.
type UserView struct {
	ID       uuid.UUID        `json:"id"`
	Mobile   string           `json:"mobile"`
	Name     string           `json:"name"`
	Role     enums.Role       `json:"role"`
	Status   enums.UserStatus `json:"status"`
	Language string           `json:"language"`
	JoinedAt time.Time        `json:"joined_at"`
}

// SessionResponse carries the minted credential and the user it identifies.
type SessionResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

// ViewOf maps a stored user onto its outward shape.
func ViewOf(user *models.User) UserView {
	return UserView{
		ID:       user.ID,
		Mobile:   user.Mobile,
		Name:     user.Name,
		Role:     user.Role,
		Status:   user.Status,
		Language: user.Language,
		JoinedAt: user.CreatedAt,
	}
}
