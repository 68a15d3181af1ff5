package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/tatweer-edu/visit-plans-api/internal/dto"
	"github.com/tatweer-edu/visit-plans-api/internal/models"
)

const testSecret = "test-secret"

func newTestAuthService(supervisors *memorySupervisorRepo) AuthService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewAuthService(supervisors, testSecret, "manager-key", time.Hour, validate, testLogger())
}

func TestAuthServiceLoginNormalizesInput(t *testing.T) {
	repo := newMemorySupervisorRepo(models.Supervisor{
		ID:         7,
		NationalID: "1020103717",
		FullName:   "مشرف تجريبي",
		Mobile:     "0551234567",
		IsActive:   true,
	})
	svc := newTestAuthService(repo)

	result, err := svc.LoginSupervisor(context.Background(), dto.SupervisorLoginRequest{
		NationalID:  "102-0103717 ",
		MobileLast4: "4567",
	})
	require.NoError(t, err)
	require.Equal(t, RoleSupervisor, result.Role)
	require.NotNil(t, result.Profile)
	require.Equal(t, uint(7), result.Profile.ID)

	token, err := jwt.Parse(result.Token, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims, ok := token.Claims.(jwt.MapClaims)
	require.True(t, ok)
	require.Equal(t, float64(7), claims["sub"])
	require.Equal(t, RoleSupervisor, claims["role"])
}

func TestAuthServiceLoginWrongLast4(t *testing.T) {
	repo := newMemorySupervisorRepo(models.Supervisor{
		ID:         1,
		NationalID: "1020103717",
		Mobile:     "0551234567",
		IsActive:   true,
	})
	svc := newTestAuthService(repo)

	_, err := svc.LoginSupervisor(context.Background(), dto.SupervisorLoginRequest{
		NationalID:  "1020103717",
		MobileLast4: "9999",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceLoginRejectsShortNationalID(t *testing.T) {
	svc := newTestAuthService(newMemorySupervisorRepo())

	_, err := svc.LoginSupervisor(context.Background(), dto.SupervisorLoginRequest{
		NationalID:  "12345",
		MobileLast4: "4567",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceLoginInactiveSupervisor(t *testing.T) {
	repo := newMemorySupervisorRepo(models.Supervisor{
		ID:         2,
		NationalID: "1020103717",
		Mobile:     "0551234567",
		IsActive:   false,
	})
	svc := newTestAuthService(repo)

	_, err := svc.LoginSupervisor(context.Background(), dto.SupervisorLoginRequest{
		NationalID:  "1020103717",
		MobileLast4: "4567",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceLoginSupervisorWithoutMobile(t *testing.T) {
	repo := newMemorySupervisorRepo(models.Supervisor{
		ID:         3,
		NationalID: "1020103717",
		IsActive:   true,
	})
	svc := newTestAuthService(repo)

	_, err := svc.LoginSupervisor(context.Background(), dto.SupervisorLoginRequest{
		NationalID:  "1020103717",
		MobileLast4: "0000",
	})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceManagerLogin(t *testing.T) {
	svc := newTestAuthService(newMemorySupervisorRepo())

	result, err := svc.LoginManager(context.Background(), dto.ManagerLoginRequest{AccessKey: "manager-key"})
	require.NoError(t, err)
	require.Equal(t, RoleManager, result.Role)
	require.Nil(t, result.Profile)

	_, err = svc.LoginManager(context.Background(), dto.ManagerLoginRequest{AccessKey: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
