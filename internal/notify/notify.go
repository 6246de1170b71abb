// Package notify は認証コードメールのキュー投入と配送を提供する。
//
// 登録リクエストはメールをキューに積んで即座に応答を返し、
// 配送はワーカーが非同期に行う。配送失敗はログとメトリクスに記録するのみで、
// 呼び出し元には決して伝播しない（リトライもしない）。
package notify

import "context"

// Mail は配送待ちの認証コードメールを表す。
type Mail struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// Queue は認証メールのキュー投入インターフェース。
// Enqueueは配送を待たずに返る。
type Queue interface {
	// Enqueue はメールをキューに積む。
	Enqueue(ctx context.Context, mail Mail) error
	// Dequeue はキューの先頭のメールを取り出す。キューが空の間はブロックし、
	// ctxのキャンセルで(nil, ctx.Err())を返す。
	Dequeue(ctx context.Context) (*Mail, error)
}

// Mailer は認証コードメールの配送インターフェース。
type Mailer interface {
	// SendVerificationMail は認証コードを指定アドレスへ送信する。
	SendVerificationMail(ctx context.Context, email, code string) error
}
