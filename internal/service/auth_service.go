package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tatweer-edu/visit-plans-api/internal/dto"
	"github.com/tatweer-edu/visit-plans-api/internal/repository"
	"github.com/tatweer-edu/visit-plans-api/internal/spreadsheet"
)

// Roles carried in the JWT "role" claim.
const (
	RoleSupervisor = "supervisor"
	RoleManager    = "manager"
)

// ErrInvalidCredentials indicates the identity check failed. The same error
// covers unknown national IDs and wrong mobile digits so responses do not
// reveal which part was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService issues JWT tokens for supervisors and the manager console.
type AuthService interface {
	LoginSupervisor(ctx context.Context, payload dto.SupervisorLoginRequest) (dto.LoginResponse, error)
	LoginManager(ctx context.Context, payload dto.ManagerLoginRequest) (dto.LoginResponse, error)
}

type authService struct {
	supervisors repository.SupervisorRepository
	secret      []byte
	accessKey   string
	tokenTTL    time.Duration
	validator   *validator.Validate
	logger      zerolog.Logger
	now         func() time.Time
}

// NewAuthService builds a new auth service.
func NewAuthService(supervisors repository.SupervisorRepository, secret, managerAccessKey string, tokenTTL time.Duration, validate *validator.Validate, logger zerolog.Logger) AuthService {
	return &authService{
		supervisors: supervisors,
		secret:      []byte(secret),
		accessKey:   managerAccessKey,
		tokenTTL:    tokenTTL,
		validator:   validate,
		logger:      logger.With().Str("component", "auth_service").Logger(),
		now:         time.Now,
	}
}

func (s *authService) LoginSupervisor(ctx context.Context, payload dto.SupervisorLoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	nationalID := spreadsheet.Digits(payload.NationalID)
	last4 := spreadsheet.Digits(payload.MobileLast4)
	if len(nationalID) != 10 || len(last4) != 4 {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	supervisor, err := s.supervisors.FindActiveByNationalID(ctx, nationalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.LoginResponse{}, ErrInvalidCredentials
		}

		return dto.LoginResponse{}, err
	}

	expected := supervisor.MobileLast4()
	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(last4)) != 1 {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	token, err := s.issueToken(supervisor.ID, RoleSupervisor)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	s.logger.Info().Uint("supervisor_id", supervisor.ID).Msg("supervisor logged in")

	profile := dto.NewSupervisorResponse(supervisor)

	return dto.LoginResponse{
		Token:     token,
		Role:      RoleSupervisor,
		ExpiresIn: int64(s.tokenTTL.Seconds()),
		Profile:   &profile,
	}, nil
}

func (s *authService) LoginManager(ctx context.Context, payload dto.ManagerLoginRequest) (dto.LoginResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.LoginResponse{}, err
	}

	if s.accessKey == "" || subtle.ConstantTimeCompare([]byte(s.accessKey), []byte(payload.AccessKey)) != 1 {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	token, err := s.issueToken(0, RoleManager)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	s.logger.Info().Msg("manager logged in")

	return dto.LoginResponse{
		Token:     token,
		Role:      RoleManager,
		ExpiresIn: int64(s.tokenTTL.Seconds()),
	}, nil
}

func (s *authService) issueToken(subjectID uint, role string) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":  subjectID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(s.tokenTTL).Unix(),
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
