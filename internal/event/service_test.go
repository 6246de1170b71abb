package event

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/hitoshi/lyfestyler/internal/model"
)

// mockEventRepo はrepository.EventRepositoryのモック実装。
type mockEventRepo struct {
	created []*model.ScheduleEvent
	listFn  func(ctx context.Context, userID, date string) ([]*model.ScheduleEvent, error)
}

func (m *mockEventRepo) Create(ctx context.Context, ev *model.ScheduleEvent) error {
	m.created = append(m.created, ev)
	return nil
}

func (m *mockEventRepo) ListByUserAndDate(ctx context.Context, userID, date string) ([]*model.ScheduleEvent, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, date)
	}
	return nil, nil
}

func fixedTime() time.Time {
	return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

// イベント作成で所有者が認証済みユーザーになりタグがシリアライズされることを検証
func TestCreate_SetsOwnerAndSerializesTags(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewService(repo, fixedTime)

	ev, err := svc.Create(context.Background(), "user-1", Input{
		Title: "dentist",
		Date:  "2024-06-02",
		Tags:  []int{1, 3},
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if ev.UserID != "user-1" {
		t.Errorf("UserID = %q, want user-1", ev.UserID)
	}
	if ev.Tags != "[1,3]" {
		t.Errorf("Tags = %q, want [1,3]", ev.Tags)
	}
	if ev.ID == "" {
		t.Error("ID must be generated")
	}
	if !ev.CreatedAt.Equal(fixedTime()) {
		t.Errorf("CreatedAt = %v, want %v", ev.CreatedAt, fixedTime())
	}
	if len(repo.created) != 1 {
		t.Fatalf("created count = %d, want 1", len(repo.created))
	}
}

// タグ未指定時に空配列としてシリアライズされることを検証
func TestCreate_NilTags_StoredAsEmptyArray(t *testing.T) {
	repo := &mockEventRepo{}
	svc := NewService(repo, fixedTime)

	ev, err := svc.Create(context.Background(), "user-1", Input{
		Title: "gym",
		Date:  "2024-06-02",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if ev.Tags != "[]" {
		t.Errorf("Tags = %q, want []", ev.Tags)
	}
}

// タイトル欠落と日付形式不正がInvalidRequestになることを検証
func TestCreate_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input Input
	}{
		{"missing title", Input{Date: "2024-06-02"}},
		{"bad date", Input{Title: "gym", Date: "06/02/2024"}},
		{"empty date", Input{Title: "gym"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockEventRepo{}
			svc := NewService(repo, nil)

			_, err := svc.Create(context.Background(), "user-1", tt.input)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidRequest {
				t.Errorf("Create() error = %v, want INVALID_REQUEST", err)
			}
			if len(repo.created) != 0 {
				t.Error("event must not be created for invalid input")
			}
		})
	}
}

// 一覧取得がリポジトリに認証済みユーザーIDを渡すことを検証
func TestListByDate_ScopesToUser(t *testing.T) {
	var gotUserID, gotDate string
	repo := &mockEventRepo{
		listFn: func(_ context.Context, userID, date string) ([]*model.ScheduleEvent, error) {
			gotUserID, gotDate = userID, date
			return []*model.ScheduleEvent{{ID: "e1", UserID: userID}}, nil
		},
	}
	svc := NewService(repo, nil)

	events, err := svc.ListByDate(context.Background(), "user-1", "2024-06-02")
	if err != nil {
		t.Fatalf("ListByDate() error = %v", err)
	}
	if gotUserID != "user-1" || gotDate != "2024-06-02" {
		t.Errorf("repo called with (%q, %q), want (user-1, 2024-06-02)", gotUserID, gotDate)
	}
	if len(events) != 1 {
		t.Errorf("events count = %d, want 1", len(events))
	}
}

// 該当イベントなしの場合にnilではなく空スライスを返すことを検証
func TestListByDate_NoEvents_ReturnsEmptySlice(t *testing.T) {
	svc := NewService(&mockEventRepo{}, nil)

	events, err := svc.ListByDate(context.Background(), "user-1", "2024-06-02")
	if err != nil {
		t.Fatalf("ListByDate() error = %v", err)
	}
	if events == nil {
		t.Error("events must be an empty slice, not nil")
	}
	if len(events) != 0 {
		t.Errorf("events count = %d, want 0", len(events))
	}
}

// 日付形式不正の一覧取得がInvalidRequestになることを検証
func TestListByDate_BadDate(t *testing.T) {
	svc := NewService(&mockEventRepo{}, nil)

	_, err := svc.ListByDate(context.Background(), "user-1", "next tuesday")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidRequest {
		t.Errorf("ListByDate() error = %v, want INVALID_REQUEST", err)
	}
}

// タグのエンコードとデコードの挙動を検証
func TestTagsRoundTrip(t *testing.T) {
	encoded, err := EncodeTags([]int{2, 5, 7})
	if err != nil {
		t.Fatalf("EncodeTags() error = %v", err)
	}
	if encoded != "[2,5,7]" {
		t.Errorf("EncodeTags() = %q, want [2,5,7]", encoded)
	}
	if got := DecodeTags(encoded); !reflect.DeepEqual(got, []int{2, 5, 7}) {
		t.Errorf("DecodeTags() = %v, want [2 5 7]", got)
	}
}

// 不正な永続値のデコードが空スライスに落ちることを検証
func TestDecodeTags_Malformed(t *testing.T) {
	for _, raw := range []string{"", "null", "{bad", "not json"} {
		if got := DecodeTags(raw); got == nil || len(got) != 0 {
			t.Errorf("DecodeTags(%q) = %v, want empty slice", raw, got)
		}
	}
}
