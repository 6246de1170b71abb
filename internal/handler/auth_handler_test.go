package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hitoshi/lyfestyler/internal/middleware"
	"github.com/hitoshi/lyfestyler/internal/model"
)

// mockRegistrationService はRegistrationServiceInterfaceのモック実装。
type mockRegistrationService struct {
	registerFn func(ctx context.Context, email, password string) error
	verifyFn   func(ctx context.Context, email, code string) error
}

func (m *mockRegistrationService) Register(ctx context.Context, email, password string) error {
	return m.registerFn(ctx, email, password)
}

func (m *mockRegistrationService) Verify(ctx context.Context, email, code string) error {
	return m.verifyFn(ctx, email, code)
}

// mockAuthService はAuthServiceInterfaceのモック実装。
type mockAuthService struct {
	loginFn func(ctx context.Context, email, password string) (string, error)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, error) {
	return m.loginFn(ctx, email, password)
}

// --- Register ---

func TestRegister_Success_Returns201WithMessage(t *testing.T) {
	var gotEmail, gotPassword string
	reg := &mockRegistrationService{
		registerFn: func(_ context.Context, email, password string) error {
			gotEmail, gotPassword = email, password
			return nil
		},
	}
	h := NewAuthHandler(reg, &mockAuthService{}, nil)

	body := `{"email":"a@x.com","password":"pw1"}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusCreated)
	}
	if gotEmail != "a@x.com" || gotPassword != "pw1" {
		t.Errorf("service called with (%q, %q)", gotEmail, gotPassword)
	}

	var msg messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if msg.Message != "Verification code sent to your email" {
		t.Errorf("message = %q", msg.Message)
	}
}

func TestRegister_DuplicateEmail_Returns400(t *testing.T) {
	reg := &mockRegistrationService{
		registerFn: func(_ context.Context, _, _ string) error {
			return model.NewDuplicateEmailError()
		},
	}
	h := NewAuthHandler(reg, &mockAuthService{}, nil)

	body := `{"email":"a@x.com","password":"pw1"}`
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Register(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}

	var errResp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if errResp.Error.Code != model.ErrCodeDuplicateEmail {
		t.Errorf("code = %q, want %q", errResp.Error.Code, model.ErrCodeDuplicateEmail)
	}
	if errResp.Error.Message != "Email already registered" {
		t.Errorf("message = %q", errResp.Error.Message)
	}
}

func TestRegister_InvalidBody_Returns400(t *testing.T) {
	reg := &mockRegistrationService{
		registerFn: func(_ context.Context, _, _ string) error {
			t.Error("service must not be called for invalid input")
			return nil
		},
	}
	h := NewAuthHandler(reg, &mockAuthService{}, nil)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{bad`},
		{"missing email", `{"password":"pw1"}`},
		{"invalid email", `{"email":"not-an-email","password":"pw1"}`},
		{"missing password", `{"email":"a@x.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			h.Register(w, req)

			if w.Result().StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
			}
		})
	}
}

// --- Verify ---

func TestVerify_Success_Returns200WithMessage(t *testing.T) {
	reg := &mockRegistrationService{
		verifyFn: func(_ context.Context, email, code string) error {
			if email != "a@x.com" || code != "123456" {
				t.Errorf("service called with (%q, %q)", email, code)
			}
			return nil
		},
	}
	h := NewAuthHandler(reg, &mockAuthService{}, nil)

	body := `{"email":"a@x.com","code":"123456"}`
	req := httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(body))
	w := httptest.NewRecorder()

	h.Verify(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var msg messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if msg.Message != "Email verified successfully" {
		t.Errorf("message = %q", msg.Message)
	}
}

func TestVerify_ServiceErrors_MapToStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"user not found", model.NewUserNotFoundError(), http.StatusNotFound},
		{"already verified", model.NewAlreadyVerifiedError(), http.StatusBadRequest},
		{"invalid code", model.NewInvalidOrExpiredCodeError(), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := &mockRegistrationService{
				verifyFn: func(_ context.Context, _, _ string) error { return tt.err },
			}
			h := NewAuthHandler(reg, &mockAuthService{}, nil)

			body := `{"email":"a@x.com","code":"123456"}`
			req := httptest.NewRequest(http.MethodPost, "/verify", strings.NewReader(body))
			w := httptest.NewRecorder()

			h.Verify(w, req)

			if w.Result().StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, tt.wantStatus)
			}
		})
	}
}

// --- Token ---

func TestToken_Success_ReturnsBearerToken(t *testing.T) {
	auth := &mockAuthService{
		loginFn: func(_ context.Context, email, password string) (string, error) {
			if email != "a@x.com" || password != "pw1" {
				t.Errorf("service called with (%q, %q)", email, password)
			}
			return "signed-token", nil
		},
	}
	h := NewAuthHandler(&mockRegistrationService{}, auth, nil)

	form := url.Values{}
	form.Set("email", "a@x.com")
	form.Set("password", "pw1")
	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	h.Token(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if tok.AccessToken != "signed-token" {
		t.Errorf("access_token = %q, want signed-token", tok.AccessToken)
	}
	if tok.TokenType != "bearer" {
		t.Errorf("token_type = %q, want bearer", tok.TokenType)
	}
}

func TestToken_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"invalid credentials", model.NewInvalidCredentialsError(), http.StatusUnauthorized},
		{"email not verified", model.NewEmailNotVerifiedError(), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := &mockAuthService{
				loginFn: func(_ context.Context, _, _ string) (string, error) {
					return "", tt.err
				},
			}
			h := NewAuthHandler(&mockRegistrationService{}, auth, nil)

			form := url.Values{}
			form.Set("email", "a@x.com")
			form.Set("password", "wrong")
			req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader(form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := httptest.NewRecorder()

			h.Token(w, req)

			if w.Result().StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Result().StatusCode, tt.wantStatus)
			}
		})
	}
}

func TestToken_MissingFields_Returns400(t *testing.T) {
	h := NewAuthHandler(&mockRegistrationService{}, &mockAuthService{
		loginFn: func(_ context.Context, _, _ string) (string, error) {
			t.Error("service must not be called")
			return "", nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodPost, "/token", strings.NewReader("email=a%40x.com"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()

	h.Token(w, req)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}

// クエリパラメータ経由のemail/passwordでもログインできることを検証
func TestToken_QueryParams_Accepted(t *testing.T) {
	auth := &mockAuthService{
		loginFn: func(_ context.Context, email, password string) (string, error) {
			if email != "a@x.com" || password != "pw1" {
				t.Errorf("service called with (%q, %q)", email, password)
			}
			return "signed-token", nil
		},
	}
	h := NewAuthHandler(&mockRegistrationService{}, auth, nil)

	req := httptest.NewRequest(http.MethodPost, "/token?email=a%40x.com&password=pw1", nil)
	w := httptest.NewRecorder()

	h.Token(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}

// --- Me ---

func TestMe_Success_ReturnsUser(t *testing.T) {
	h := NewAuthHandler(&mockRegistrationService{}, &mockAuthService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req = req.WithContext(middleware.ContextWithUser(req.Context(),
		&model.User{ID: "user-1", Email: "a@x.com", IsVerified: true}))
	w := httptest.NewRecorder()

	h.Me(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var me meResponse
	if err := json.NewDecoder(resp.Body).Decode(&me); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if me.ID != "user-1" || me.Email != "a@x.com" || !me.IsVerified {
		t.Errorf("me = %+v", me)
	}
}

func TestMe_NoAuthenticatedUser_Returns401(t *testing.T) {
	h := NewAuthHandler(&mockRegistrationService{}, &mockAuthService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	w := httptest.NewRecorder()

	h.Me(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}
