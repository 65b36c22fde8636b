package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stylesense/stylesense-backend/internal/auth"
	"github.com/stylesense/stylesense-backend/internal/users"
	pkgerrors "github.com/stylesense/stylesense-backend/pkg/errors"
)

type stubAuthService struct {
	result *auth.Result
	err    error
}

func (s stubAuthService) Signup(ctx context.Context, req auth.SignupRequest) (*auth.Result, error) {
	return s.result, s.err
}

func (s stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.Result, error) {
	return s.result, s.err
}

func TestAuthSignupSuccess(t *testing.T) {
	result := &auth.Result{
		User:  users.DTO{ID: "5f1d7f9c8b4b4b0001a00001", Email: "ada@example.com", Username: "ada"},
		Token: auth.Token{AccessToken: "access-token", TokenType: "bearer"},
	}
	handler := AuthSignup(stubAuthService{result: result}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup",
		bytes.NewReader([]byte(`{"email":"ada@example.com","username":"ada","password":"a strong password"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}

	var envelope struct {
		Data struct {
			User  users.DTO  `json:"user"`
			Token auth.Token `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.User.Email != "ada@example.com" {
		t.Fatalf("expected user in payload got %+v", envelope.Data.User)
	}
	if envelope.Data.Token.AccessToken != "access-token" || envelope.Data.Token.TokenType != "bearer" {
		t.Fatalf("expected token in payload got %+v", envelope.Data.Token)
	}
}

func TestAuthSignupInvalidPayload(t *testing.T) {
	handler := AuthSignup(stubAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup",
		bytes.NewReader([]byte(`{"email":"not-an-email","password":"short"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthLoginMapsUnauthorized(t *testing.T) {
	handler := AuthLogin(stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "incorrect email or password")}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		bytes.NewReader([]byte(`{"email":"ada@example.com","password":"wrong"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeUnauthorized) {
		t.Fatalf("unexpected error code %s", envelope.Error.Code)
	}
	if envelope.Error.Message != "incorrect email or password" {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
}

func TestAuthLoginNilService(t *testing.T) {
	handler := AuthLogin(nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
		bytes.NewReader([]byte(`{"email":"ada@example.com","password":"pw"}`)))
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
