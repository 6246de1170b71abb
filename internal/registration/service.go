// Package registration は登録とメール認証のワークフローを提供する。
//
// ユーザーはメールアドレスごとに unregistered → registered_unverified →
// verified の順に遷移する。verifiedは終端状態で、未認証に戻ることはない。
package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/lyfestyler/internal/auth"
	"github.com/hitoshi/lyfestyler/internal/model"
	"github.com/hitoshi/lyfestyler/internal/notify"
	"github.com/hitoshi/lyfestyler/internal/repository"
	"github.com/hitoshi/lyfestyler/internal/verification"
)

// MetricsRecorder は登録・認証メトリクスの記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type MetricsRecorder interface {
	RecordRegistration()
	RecordVerification(success bool)
}

// GenerateCodeFunc は認証コードの生成関数。テストで差し替え可能にする。
type GenerateCodeFunc func() (string, error)

// Service は登録とメール認証のワークフローを提供する。
type Service struct {
	userRepo     repository.UserRepository
	codeStore    verification.CodeStore
	queue        notify.Queue
	hasher       auth.PasswordHasher
	generateCode GenerateCodeFunc
	clock        func() time.Time
	metrics      MetricsRecorder
}

// NewService はServiceを生成する。
// generateCodeとclockがnilの場合はそれぞれverification.GenerateCodeと
// time.Nowを使用する。metricsはnilでもよい。
func NewService(
	userRepo repository.UserRepository,
	codeStore verification.CodeStore,
	queue notify.Queue,
	hasher auth.PasswordHasher,
	generateCode GenerateCodeFunc,
	clock func() time.Time,
	metrics MetricsRecorder,
) *Service {
	if generateCode == nil {
		generateCode = verification.GenerateCode
	}
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		userRepo:     userRepo,
		codeStore:    codeStore,
		queue:        queue,
		hasher:       hasher,
		generateCode: generateCode,
		clock:        clock,
		metrics:      metrics,
	}
}

// Register は未登録メールアドレスのユーザーを作成し、認証コードを発行して
// 通知をキューに積む。メール配送の成否は応答に影響しない。
//
// 既存ユーザーがいる場合はDuplicateEmailを返す。同時登録の競合は
// ストレージ層の一意制約が高々1件成功に抑え、敗者も同じエラーになる。
func (s *Service) Register(ctx context.Context, email, password string) error {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up existing user: %w", err)
	}
	if existing != nil {
		return model.NewDuplicateEmailError()
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.clock()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		IsVerified:   false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return model.NewDuplicateEmailError()
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	code, err := s.generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	if err := s.codeStore.Store(ctx, email, code); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}

	// 配送はワーカーに委ねる。キュー投入後は応答をブロックしない。
	if err := s.queue.Enqueue(ctx, notify.Mail{Email: email, Code: code}); err != nil {
		// 配送経路の失敗は登録の成否を覆さない
		slog.Error("failed to enqueue verification mail",
			slog.String("error", err.Error()),
		)
	}

	slog.Info("user registered", slog.String("user_id", user.ID))
	if s.metrics != nil {
		s.metrics.RecordRegistration()
	}
	return nil
}

// Verify は認証コードを検証し、ユーザーを認証済みにする。
//
// ユーザー不在はUserNotFound、認証済みユーザーへの再認証はAlreadyVerified
// （有効なコードの再送でも同様）、コードの不存在・不一致・期限切れは
// InvalidOrExpiredCodeを返す。成功したコードは消費され、再利用できない。
func (s *Service) Verify(ctx context.Context, email, code string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}
	if user.IsVerified {
		return model.NewAlreadyVerifiedError()
	}

	ok, err := s.codeStore.Verify(ctx, email, code)
	if err != nil {
		return fmt.Errorf("failed to verify code: %w", err)
	}
	if !ok {
		if s.metrics != nil {
			s.metrics.RecordVerification(false)
		}
		return model.NewInvalidOrExpiredCodeError()
	}

	if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}

	slog.Info("user verified", slog.String("user_id", user.ID))
	if s.metrics != nil {
		s.metrics.RecordVerification(true)
	}
	return nil
}
