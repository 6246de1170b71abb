// Package event はカレンダーイベントの作成と一覧取得を提供する。
package event

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/lyfestyler/internal/model"
	"github.com/hitoshi/lyfestyler/internal/repository"
)

// dateLayout はイベント日付の形式。
const dateLayout = "2006-01-02"

// Input はイベント作成の入力。所有者はリクエストで指定できず、
// 常に認証済みユーザーになる。
type Input struct {
	Title           string
	StartTime       string
	EndTime         string
	Date            string
	IsRange         bool
	IsRecurring     bool
	RecurrenceDays  int
	Reminder        bool
	ReminderMinutes int
	Color           string
	Description     string
	Tags            []int
}

// Service はイベントのユースケースを提供する。
type Service struct {
	eventRepo repository.EventRepository
	clock     func() time.Time
}

// NewService はServiceを生成する。clockがnilの場合はtime.Nowを使用する。
func NewService(eventRepo repository.EventRepository, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{eventRepo: eventRepo, clock: clock}
}

// Create は認証済みユーザーのイベントを作成する。
// タグはJSON文字列にシリアライズして保存する。
func (s *Service) Create(ctx context.Context, userID string, in Input) (*model.ScheduleEvent, error) {
	if in.Title == "" {
		return nil, model.NewInvalidRequestError("title is required")
	}
	if _, err := time.Parse(dateLayout, in.Date); err != nil {
		return nil, model.NewInvalidRequestError("date must be in YYYY-MM-DD format")
	}

	tags, err := EncodeTags(in.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	ev := &model.ScheduleEvent{
		ID:              uuid.New().String(),
		UserID:          userID,
		Title:           in.Title,
		StartTime:       in.StartTime,
		EndTime:         in.EndTime,
		Date:            in.Date,
		IsRange:         in.IsRange,
		IsRecurring:     in.IsRecurring,
		RecurrenceDays:  in.RecurrenceDays,
		Reminder:        in.Reminder,
		ReminderMinutes: in.ReminderMinutes,
		Color:           in.Color,
		Description:     in.Description,
		Tags:            tags,
		CreatedAt:       s.clock(),
	}

	if err := s.eventRepo.Create(ctx, ev); err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	slog.Info("event created",
		slog.String("event_id", ev.ID),
		slog.String("user_id", userID),
		slog.String("date", ev.Date))
	return ev, nil
}

// ListByDate は認証済みユーザーが所有する指定日のイベント一覧を返す。
// 他ユーザーのイベントは含まれない。該当なしの場合は空スライスを返す。
func (s *Service) ListByDate(ctx context.Context, userID, date string) ([]*model.ScheduleEvent, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, model.NewInvalidRequestError("date must be in YYYY-MM-DD format")
	}

	events, err := s.eventRepo.ListByUserAndDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	if events == nil {
		events = []*model.ScheduleEvent{}
	}
	return events, nil
}

// EncodeTags はタグID一覧をJSON文字列にシリアライズする。
// nilは空配列"[]"として扱う。
func EncodeTags(tags []int) (string, error) {
	if tags == nil {
		tags = []int{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeTags は永続化されたJSON文字列をタグID一覧に戻す。
// 空文字列や不正な値は空スライスとして扱う。
func DecodeTags(raw string) []int {
	if raw == "" {
		return []int{}
	}
	var tags []int
	if err := json.Unmarshal([]byte(raw), &tags); err != nil {
		slog.Warn("failed to decode event tags", slog.String("raw", raw))
		return []int{}
	}
	if tags == nil {
		return []int{}
	}
	return tags
}
