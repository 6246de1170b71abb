package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSigner は署名付きアクセストークンの発行と検証のインターフェース。
// ワークフローロジックから署名方式を差し替え可能にするための抽象化。
type TokenSigner interface {
	// Sign はemailをsubjectとするTTL付きトークンを発行する。
	Sign(email string, now time.Time) (string, error)
	// Parse はトークンの署名と有効期限を検証し、subject（email）を返す。
	Parse(token string) (string, error)
}

// JWTSigner はHMAC-SHA256で署名するJWTのTokenSigner実装。
// トークンはサーバー側に保存しない自己完結型のクレデンシャルで、
// 失効リストは持たない。
type JWTSigner struct {
	secret []byte
	ttl    time.Duration
}

// NewJWTSigner はJWTSignerを生成する。
func NewJWTSigner(secret string, ttl time.Duration) *JWTSigner {
	return &JWTSigner{secret: []byte(secret), ttl: ttl}
}

// Sign はクレーム {sub=email, iat, exp} を持つHS256署名トークンを発行する。
func (s *JWTSigner) Sign(email string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse はトークンを検証してsubjectを返す。
// 署名不正・期限切れ・署名方式の不一致はすべてエラーになる。
func (s *JWTSigner) Parse(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		})
	if err != nil {
		return "", fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("token has no subject claim")
	}

	return claims.Subject, nil
}

// compile-time interface check
var _ TokenSigner = (*JWTSigner)(nil)
