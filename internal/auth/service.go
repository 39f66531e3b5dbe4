package auth

import (
	"context"
	"encoding/json"
	"time"

	"github.com/farmdirect/farmdirect-backend/internal/otp"
	"github.com/farmdirect/farmdirect-backend/internal/users"
	"github.com/farmdirect/farmdirect-backend/pkg/auth"
	"github.com/farmdirect/farmdirect-backend/pkg/config"
	"github.com/farmdirect/farmdirect-backend/pkg/db"
	"github.com/farmdirect/farmdirect-backend/pkg/enums"
	pkgerrors "github.com/farmdirect/farmdirect-backend/pkg/errors"
	"github.com/farmdirect/farmdirect-backend/pkg/logger"
	"github.com/google/uuid"
)

// Service drives mobile-first onboarding and login. Both flows are OTP
// gated; registration additionally creates the user and its role profile
// inside a single transaction scope.
type Service struct {
	db        *db.Client
	users     *users.Repository
	otp       *otp.Service
	jwtCfg    config.JWTConfig
	logg      *logger.Logger
	exposeOTP bool
	now       func() time.Time
}

// ServiceParams packages the dependencies for the auth flows.
type ServiceParams struct {
	DB        *db.Client
	Users     *users.Repository
	OTP       *otp.Service
	JWT       config.JWTConfig
	Logger    *logger.Logger
	ExposeOTP bool
	Now       func() time.Time
}

// NewService builds the auth service.
func NewService(params ServiceParams) (*Service, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users repository required")
	}
	if params.OTP == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "otp service required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		db:        params.DB,
		users:     params.Users,
		otp:       params.OTP,
		jwtCfg:    params.JWT,
		logg:      params.Logger,
		exposeOTP: params.ExposeOTP,
		now:       now,
	}, nil
}

// RegisterStart rejects mobiles that already have an account, then issues a
// challenge for the rest of the flow.
func (s *Service) RegisterStart(ctx context.Context, req StartRequest) (*ChallengeResponse, error) {
	existing, err := s.users.FindByMobile(ctx, req.Mobile)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check mobile")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "mobile already registered")
	}

	challenge, err := s.otp.Issue(ctx, req.Mobile)
	if err != nil {
		return nil, err
	}
	return s.challengeResponse(challenge), nil
}

// RegisterComplete verifies the challenge and, inside one scope, creates the
// user plus exactly one role profile, then mints the session token.
func (s *Service) RegisterComplete(ctx context.Context, req RegisterCompleteRequest) (*SessionResponse, error) {
	role, err := enums.ParseRole(req.Role)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}
	if !role.Registerable() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role cannot self-register")
	}

	result := s.otp.Verify(req.OTPID, req.OTP)
	if result.Outcome != otp.OutcomeValid || result.Mobile != req.Mobile {
		return nil, pkgerrors.New(pkgerrors.CodeOTP, "invalid or expired OTP")
	}

	language := req.Language
	if language == "" {
		language = "en"
	}

	userID := uuid.New()
	now := s.now().UTC()

	err = s.db.WithScope(ctx, func(scope *db.Scope) error {
		_, err := scope.Exec(ctx,
			`INSERT INTO users (id, mobile, name, role, language, status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			userID.String(), req.Mobile, req.Name, role.String(), language,
			enums.UserStatusActive.String(), now, now,
		)
		if err != nil {
			return err
		}
		return s.insertProfile(ctx, scope, role, userID, req)
	})
	if err != nil {
		if db.IsUniqueViolation(err, "mobile") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "mobile already registered")
		}
		s.logFailure(ctx, "registration scope failed", err)
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "registration failed")
	}

	token, err := auth.Mint(s.jwtCfg, now, userID, role)
	if err != nil {
		s.logFailure(ctx, "token mint failed", err)
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "registration failed")
	}

	if s.logg != nil {
		ctx = s.logg.WithUserID(ctx, userID.String())
		s.logg.Info(ctx, "user registered")
	}

	return &SessionResponse{
		Token: token,
		User: UserView{
			ID:       userID,
			Mobile:   req.Mobile,
			Name:     req.Name,
			Role:     role,
			Status:   enums.UserStatusActive,
			Language: language,
			JoinedAt: now,
		},
	}, nil
}

// LoginStart issues a challenge for a registered mobile. Unknown mobiles
// receive an identically shaped response backed by an unverifiable decoy, so
// the endpoint does not reveal which numbers hold accounts.
func (s *Service) LoginStart(ctx context.Context, req StartRequest) (*ChallengeResponse, error) {
	user, err := s.users.FindByMobile(ctx, req.Mobile)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check mobile")
	}

	var challenge otp.Challenge
	if user == nil {
		challenge, err = s.otp.IssueDecoy(req.Mobile)
	} else {
		challenge, err = s.otp.Issue(ctx, req.Mobile)
	}
	if err != nil {
		return nil, err
	}
	return s.challengeResponse(challenge), nil
}

// LoginVerify consumes the challenge and mints a session for the account.
func (s *Service) LoginVerify(ctx context.Context, req VerifyRequest) (*SessionResponse, error) {
	result := s.otp.Verify(req.OTPID, req.OTP)
	if result.Outcome != otp.OutcomeValid || result.Mobile != req.Mobile {
		return nil, pkgerrors.New(pkgerrors.CodeOTP, "invalid or expired OTP")
	}

	user, err := s.users.FindByMobile(ctx, req.Mobile)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if user == nil {
		return nil, pkgerrors.New(pkgerrors.CodeOTP, "invalid or expired OTP")
	}
	if user.Status == enums.UserStatusSuspended {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "account suspended")
	}

	token, err := auth.Mint(s.jwtCfg, s.now(), user.ID, user.Role)
	if err != nil {
		s.logFailure(ctx, "token mint failed", err)
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "login failed")
	}

	if s.logg != nil {
		ctx = s.logg.WithUserID(ctx, user.ID.String())
		s.logg.Info(ctx, "user logged in")
	}

	return &SessionResponse{Token: token, User: ViewOf(user)}, nil
}

func (s *Service) insertProfile(ctx context.Context, scope *db.Scope, role enums.Role, userID uuid.UUID, req RegisterCompleteRequest) error {
	profileID := uuid.New()
	switch role {
	case enums.RoleFarmer:
		crops, err := json.Marshal(req.Crops)
		if err != nil {
			return err
		}
		_, err = scope.Exec(ctx,
			`INSERT INTO farmer_profiles (id, user_id, state, district, village, farm_size, crops)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			profileID.String(), userID.String(), req.State, req.District, req.Village,
			req.FarmSize, string(crops),
		)
		return err
	case enums.RoleRetailer:
		_, err := scope.Exec(ctx,
			`INSERT INTO retailer_profiles (id, user_id, shop_name, shop_address)
			 VALUES ($1, $2, $3, $4)`,
			profileID.String(), userID.String(), req.ShopName, req.ShopAddress,
		)
		return err
	case enums.RoleDelivery:
		_, err := scope.Exec(ctx,
			`INSERT INTO delivery_profiles (id, user_id, vehicle_type, vehicle_number)
			 VALUES ($1, $2, $3, $4)`,
			profileID.String(), userID.String(), req.VehicleType, req.VehicleNumber,
		)
		return err
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, "role cannot self-register")
	}
}

func (s *Service) challengeResponse(challenge otp.Challenge) *ChallengeResponse {
	resp := &ChallengeResponse{Message: "OTP sent", OTPID: challenge.ID}
	if s.exposeOTP {
		resp.OTP = challenge.Code
	}
	return resp
}

func (s *Service) logFailure(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithField(ctx, "dump", pkgerrors.Dump(err))
	s.logg.Error(ctx, msg, err)
}
