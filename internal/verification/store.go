package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodeStore は認証コードの保管インターフェース。
// コードはメールアドレスごとに高々1件で、TTL付きで保持する。
type CodeStore interface {
	// Store はemailに対するコードを保存する。既存のコードは上書きされ、
	// 鮮度ウィンドウ（TTL）が新たに開始する。同一emailへの再呼び出しは安全。
	Store(ctx context.Context, email, code string) error

	// Verify はemailに対するコードが存在し、完全一致し、TTL内である場合に
	// trueを返す。不存在・不一致・期限切れはいずれもfalseに畳み込む。
	// 成功時はコードを消費（削除）し、同じコードの再利用を防ぐ。
	Verify(ctx context.Context, email, code string) (bool, error)
}

// codeKeyPrefix はRedisキーの接頭辞。
const codeKeyPrefix = "verification_code:"

// RedisCodeStore はRedisを使用した認証コードストア。
// TTLはRedisのキー有効期限に委譲する。
type RedisCodeStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisCodeStore はRedisCodeStoreを生成する。
func NewRedisCodeStore(rdb *redis.Client, ttl time.Duration) *RedisCodeStore {
	return &RedisCodeStore{rdb: rdb, ttl: ttl}
}

// Store はemailに対するコードをTTL付きで保存する。
// SETは既存の値とTTLを常に上書きするため、emailごとに生きているコードは高々1件。
func (s *RedisCodeStore) Store(ctx context.Context, email, code string) error {
	if err := s.rdb.Set(ctx, codeKeyPrefix+email, code, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}
	return nil
}

// Verify はコードを検証し、成功時に消費する。
// 期限切れのキーはRedisが破棄するため、不存在と期限切れは自然に同じ結果になる。
func (s *RedisCodeStore) Verify(ctx context.Context, email, code string) (bool, error) {
	key := codeKeyPrefix + email

	stored, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get verification code: %w", err)
	}

	if stored != code {
		return false, nil
	}

	// 一致したコードは単回使用のため削除する。削除失敗は検証結果を覆さない。
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		slog.Warn("failed to consume verification code",
			slog.String("error", err.Error()),
		)
	}

	return true, nil
}

// compile-time interface check
var _ CodeStore = (*RedisCodeStore)(nil)
