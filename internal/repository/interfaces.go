// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/lyfestyler/internal/model"
)

// ErrDuplicateEmail はemailの一意制約違反を表す。
// 同時登録の競合はDBの一意制約で検出し、このエラーに正規化して返す。
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// Create は未認証状態のユーザーを作成する。
	// emailが既に存在する場合はErrDuplicateEmailを返す。
	Create(ctx context.Context, user *model.User) error

	// MarkVerified は指定IDのユーザーのis_verifiedをtrueにする。
	MarkVerified(ctx context.Context, id string) error
}

// EventRepository はカレンダーイベントの永続化インターフェース。
type EventRepository interface {
	// Create はイベントを作成する。
	Create(ctx context.Context, event *model.ScheduleEvent) error

	// ListByUserAndDate は指定ユーザーが所有する指定日のイベント一覧を返す。
	ListByUserAndDate(ctx context.Context, userID, date string) ([]*model.ScheduleEvent, error)
}
