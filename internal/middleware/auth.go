package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hitoshi/lyfestyler/internal/model"
)

// contextKey はコンテキストキーの衝突を避けるための非公開型。
type contextKey string

const (
	userIDKey contextKey = "user_id"
	userKey   contextKey = "user"
)

// ErrUserIDNotFound はコンテキストにユーザーIDが存在しない場合のエラー。
var ErrUserIDNotFound = errors.New("user id not found in context")

// ErrUserNotFound はコンテキストに認証済みユーザーが存在しない場合のエラー。
var ErrUserNotFound = errors.New("user not found in context")

// ContextWithUserID は認証済みユーザーIDをコンテキストに格納する。
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext はコンテキストから認証済みユーザーIDを取り出す。
func UserIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", ErrUserIDNotFound
	}
	return userID, nil
}

// ContextWithUser は認証済みユーザーとそのIDをコンテキストに格納する。
func ContextWithUser(ctx context.Context, user *model.User) context.Context {
	ctx = context.WithValue(ctx, userKey, user)
	return ContextWithUserID(ctx, user.ID)
}

// UserFromContext はコンテキストから認証済みユーザーを取り出す。
func UserFromContext(ctx context.Context) (*model.User, error) {
	user, ok := ctx.Value(userKey).(*model.User)
	if !ok || user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// TokenResolver はアクセストークンからユーザーを解決する。
// auth.Serviceがこれを満たす。
type TokenResolver interface {
	CurrentUser(ctx context.Context, token string) (*model.User, error)
}

// NewAuthMiddleware はBearerトークンを検証し、解決した認証済みユーザーを
// コンテキストに格納するミドルウェアを返す。ヘッダー欠落・形式不正・
// トークン無効の場合は401を返し、後続ハンドラーには到達しない。
func NewAuthMiddleware(resolver TokenResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractBearerToken(r)
			if token == "" {
				WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
				return
			}

			user, err := resolver.CurrentUser(r.Context(), token)
			if err != nil {
				var apiErr *model.APIError
				if errors.As(err, &apiErr) {
					WriteErrorResponse(w, http.StatusUnauthorized, apiErr)
				} else {
					WriteInternalServerError(w)
				}
				return
			}

			ctx := ContextWithUser(r.Context(), user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractBearerToken はAuthorizationヘッダーからBearerトークンを取り出す。
// 形式が不正な場合は空文字列を返す。
func extractBearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, prefix))
}
