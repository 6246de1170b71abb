package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/lyfestyler/internal/model"
	"github.com/hitoshi/lyfestyler/internal/repository"
)

// Service はログインと認証済みユーザー解決のビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	signer   TokenSigner
	clock    func() time.Time
}

// NewService はServiceを生成する。
// clockがnilの場合はtime.Nowを使用する。
func NewService(userRepo repository.UserRepository, hasher PasswordHasher, signer TokenSigner, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		userRepo: userRepo,
		hasher:   hasher,
		signer:   signer,
		clock:    clock,
	}
}

// Login は認証情報を検証し、アクセストークンを発行する。
// ユーザー不在とパスワード不一致は同一のInvalidCredentialsエラーを返し、
// アカウントの存在有無を漏らさない。
// 未認証アカウントには成功パスワードでもEmailNotVerifiedを返す。
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil || !s.hasher.Compare(password, user.PasswordHash) {
		slog.Warn("login rejected", slog.String("reason", "invalid credentials"))
		return "", model.NewInvalidCredentialsError()
	}

	if !user.IsVerified {
		slog.Warn("login rejected",
			slog.String("reason", "email not verified"),
			slog.String("user_id", user.ID),
		)
		return "", model.NewEmailNotVerifiedError()
	}

	token, err := s.signer.Sign(user.Email, s.clock())
	if err != nil {
		return "", fmt.Errorf("failed to issue access token: %w", err)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return token, nil
}

// CurrentUser はアクセストークンから現在のユーザーを解決する。
// トークンの欠落・不正・期限切れ、またはsubjectがユーザーに解決できない
// 場合はUnauthorizedを返す。
func (s *Service) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, model.NewUnauthorizedError()
	}

	email, err := s.signer.Parse(token)
	if err != nil {
		return nil, model.NewUnauthorizedError()
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthorizedError()
	}

	return user, nil
}
