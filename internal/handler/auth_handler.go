package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/mail"

	"github.com/hitoshi/lyfestyler/internal/middleware"
	"github.com/hitoshi/lyfestyler/internal/model"
)

// RegistrationServiceInterface は登録ハンドラーが必要とするサービスインターフェース。
type RegistrationServiceInterface interface {
	// Register はユーザーを作成し認証コードを発行する。
	Register(ctx context.Context, email, password string) error
	// Verify は認証コードを検証しユーザーを認証済みにする。
	Verify(ctx context.Context, email, code string) error
}

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// Login は認証情報を検証しアクセストークンを発行する。
	Login(ctx context.Context, email, password string) (string, error)
}

// LoginRecorder はログイン試行のメトリクス記録インターフェース。
// metrics.Collectorがこれを満たす。
type LoginRecorder interface {
	RecordLogin(success bool)
}

// AuthHandler はユーザー登録・認証関連のHTTPハンドラー。
type AuthHandler struct {
	registration RegistrationServiceInterface
	auth         AuthServiceInterface
	metrics      LoginRecorder
}

// NewAuthHandler はAuthHandlerを生成する。metricsはnilでもよい。
func NewAuthHandler(registration RegistrationServiceInterface, auth AuthServiceInterface, metrics LoginRecorder) *AuthHandler {
	return &AuthHandler{
		registration: registration,
		auth:         auth,
		metrics:      metrics,
	}
}

// registerRequest はユーザー登録リクエストのボディ。
type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// verifyRequest はメール認証リクエストのボディ。
type verifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// tokenResponse はアクセストークンのAPIレスポンス。
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// meResponse は認証済みユーザー情報のAPIレスポンス。
type meResponse struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	IsVerified bool   `json:"is_verified"`
}

// Register はユーザー登録を処理する。
// POST /register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("failed to parse request body"))
		return
	}

	if err := validateEmail(req.Email); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("email must be a valid email address"))
		return
	}
	if req.Password == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("password is required"))
		return
	}

	if err := h.registration.Register(r.Context(), req.Email, req.Password); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, messageResponse{
		Message: "Verification code sent to your email",
	})
}

// Verify はメール認証を処理する。
// POST /verify
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("failed to parse request body"))
		return
	}

	if req.Email == "" || req.Code == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("email and code are required"))
		return
	}

	if err := h.registration.Verify(r.Context(), req.Email, req.Code); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Message: "Email verified successfully",
	})
}

// Token はログインを処理しアクセストークンを発行する。
// POST /token（email/passwordフィールド。フォームボディとクエリの両方を受け付ける）
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("failed to parse form body"))
		return
	}

	email := r.FormValue("email")
	password := r.FormValue("password")
	if email == "" || password == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("email and password are required"))
		return
	}

	token, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordLogin(false)
		}
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordLogin(true)
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

// Me は認証済みユーザー情報を返す。
// GET /me（認証ミドルウェア配下。トークン検証はミドルウェアが行う）
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		ID:         user.ID,
		Email:      user.Email,
		IsVerified: user.IsVerified,
	})
}

// validateEmail はメールアドレスの形式を検証する。
func validateEmail(email string) error {
	_, err := mail.ParseAddress(email)
	return err
}
