package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/channelworks/partnerhub-backend/internal/auth"
	"github.com/channelworks/partnerhub-backend/internal/users"
	"github.com/channelworks/partnerhub-backend/pkg/enums"
	pkgerrors "github.com/channelworks/partnerhub-backend/pkg/errors"
)

type stubAuthService struct {
	login   *auth.LoginResponse
	refresh *auth.RefreshResponse
	err     error
}

func (s stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return s.login, s.err
}

func (s stubAuthService) Refresh(ctx context.Context, req auth.RefreshRequest) (*auth.RefreshResponse, error) {
	return s.refresh, s.err
}

func (s stubAuthService) Logout(ctx context.Context, accessID string) error {
	return s.err
}

type stubRegisterService struct {
	resp *auth.RegisterResponse
	err  error
}

func (s stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) (*auth.RegisterResponse, error) {
	return s.resp, s.err
}

func TestAuthLoginSuccess(t *testing.T) {
	user := &users.UserDTO{
		ID:       uuid.New(),
		Email:    "owner@acme.example",
		FullName: "Acme Owner",
		Role:     enums.ActorRolePartner,
		IsActive: true,
	}
	handler := AuthLogin(stubAuthService{login: &auth.LoginResponse{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		User:         user,
	}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{"email":"owner@acme.example","password":"Secret#1"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data struct {
			AccessToken  string         `json:"access_token"`
			RefreshToken string         `json:"refresh_token"`
			User         *users.UserDTO `json:"user"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "access-token" {
		t.Fatalf("expected access token in payload got %q", envelope.Data.AccessToken)
	}
	if envelope.Data.User == nil || envelope.Data.User.Email != user.Email {
		t.Fatalf("expected user in payload got %+v", envelope.Data.User)
	}
}

func TestAuthLoginRejectsMissingPassword(t *testing.T) {
	handler := AuthLogin(stubAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{"email":"owner@acme.example"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLoginMapsBadCredentials(t *testing.T) {
	handler := AuthLogin(stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{"email":"owner@acme.example","password":"wrong"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthRegisterCreatesDraftApplication(t *testing.T) {
	userID := uuid.New()
	partnerID := uuid.New()
	handler := AuthRegister(stubRegisterService{resp: &auth.RegisterResponse{
		UserID:    userID,
		PartnerID: partnerID,
	}}, nil)

	payload := `{
		"full_name": "Acme Owner",
		"email": "owner@acme.example",
		"password": "Secret#1pw",
		"company_name": "Acme Distribution",
		"business_type": "distributor"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	var envelope struct {
		Data struct {
			UserID    uuid.UUID `json:"user_id"`
			PartnerID uuid.UUID `json:"partner_id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.UserID != userID || envelope.Data.PartnerID != partnerID {
		t.Fatalf("expected ids in payload got %+v", envelope.Data)
	}
}

func TestAuthRegisterRejectsShortPassword(t *testing.T) {
	handler := AuthRegister(stubRegisterService{}, nil)

	payload := `{
		"full_name": "Acme Owner",
		"email": "owner@acme.example",
		"password": "short",
		"company_name": "Acme Distribution",
		"business_type": "distributor"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte(payload)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
