package verification

import (
	"context"
	"sync"
	"time"
)

// storedCode はメモリストア内のコードと有効期限を保持する。
type storedCode struct {
	code      string
	expiresAt time.Time
}

// MemoryCodeStore はプロセス内メモリを使用した認証コードストア。
// Redisを使わない開発環境とテストで使用する。
// 時刻は注入されたclockから取得するため、テストで期限切れを再現できる。
type MemoryCodeStore struct {
	mu    sync.Mutex
	codes map[string]storedCode
	ttl   time.Duration
	clock func() time.Time
}

// NewMemoryCodeStore はMemoryCodeStoreを生成する。
// clockがnilの場合はtime.Nowを使用する。
func NewMemoryCodeStore(ttl time.Duration, clock func() time.Time) *MemoryCodeStore {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryCodeStore{
		codes: make(map[string]storedCode),
		ttl:   ttl,
		clock: clock,
	}
}

// Store はemailに対するコードを保存する。既存のコードは上書きされる。
func (s *MemoryCodeStore) Store(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.codes[email] = storedCode{
		code:      code,
		expiresAt: s.clock().Add(s.ttl),
	}
	return nil
}

// Verify はコードを検証し、成功時に消費する。
// 期限切れのエントリは検証時に削除する。
func (s *MemoryCodeStore) Verify(_ context.Context, email, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.codes[email]
	if !ok {
		return false, nil
	}

	if s.clock().After(stored.expiresAt) {
		delete(s.codes, email)
		return false, nil
	}

	if stored.code != code {
		return false, nil
	}

	delete(s.codes, email)
	return true, nil
}

// compile-time interface check
var _ CodeStore = (*MemoryCodeStore)(nil)
