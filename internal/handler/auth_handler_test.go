package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/tatweer-edu/visit-plans-api/internal/dto"
	"github.com/tatweer-edu/visit-plans-api/internal/handler"
	"github.com/tatweer-edu/visit-plans-api/internal/service"
)

type mockAuthService struct {
	lastSupervisor dto.SupervisorLoginRequest
	lastManager    dto.ManagerLoginRequest
	response       dto.LoginResponse
	err            error
}

func (m *mockAuthService) LoginSupervisor(_ context.Context, payload dto.SupervisorLoginRequest) (dto.LoginResponse, error) {
	m.lastSupervisor = payload
	if m.err != nil {
		return dto.LoginResponse{}, m.err
	}
	return m.response, nil
}

func (m *mockAuthService) LoginManager(_ context.Context, payload dto.ManagerLoginRequest) (dto.LoginResponse, error) {
	m.lastManager = payload
	if m.err != nil {
		return dto.LoginResponse{}, m.err
	}
	return m.response, nil
}

func newAuthApp(svc *mockAuthService) *fiber.App {
	app := fiber.New()
	handler.NewAuthHandler(svc, testLogger()).Register(app.Group("/api/v1/auth"))
	return app
}

func TestAuthHandler_SupervisorLoginSuccess(t *testing.T) {
	svc := &mockAuthService{response: dto.LoginResponse{Token: "token-1", Role: service.RoleSupervisor}}
	app := newAuthApp(svc)

	req := jsonRequest(t, http.MethodPost, "/api/v1/auth/login", dto.SupervisorLoginRequest{
		NationalID:  "1020103717",
		MobileLast4: "4567",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool              `json:"success"`
		Data    dto.LoginResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, "token-1", response.Data.Token)
	require.Equal(t, "1020103717", svc.lastSupervisor.NationalID)
}

func TestAuthHandler_SupervisorLoginInvalidCredentials(t *testing.T) {
	svc := &mockAuthService{err: service.ErrInvalidCredentials}
	app := newAuthApp(svc)

	req := jsonRequest(t, http.MethodPost, "/api/v1/auth/login", dto.SupervisorLoginRequest{
		NationalID:  "1020103717",
		MobileLast4: "0000",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestAuthHandler_ManagerLogin(t *testing.T) {
	svc := &mockAuthService{response: dto.LoginResponse{Token: "token-2", Role: service.RoleManager}}
	app := newAuthApp(svc)

	req := jsonRequest(t, http.MethodPost, "/api/v1/auth/manager", dto.ManagerLoginRequest{AccessKey: "sesame"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, "sesame", svc.lastManager.AccessKey)
}
