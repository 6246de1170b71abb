package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/lyfestyler/internal/model"
)

// PostgresEventRepo はPostgreSQLを使用したイベントリポジトリ。
type PostgresEventRepo struct {
	db *sql.DB
}

// NewPostgresEventRepo はPostgresEventRepoを生成する。
func NewPostgresEventRepo(db *sql.DB) *PostgresEventRepo {
	return &PostgresEventRepo{db: db}
}

// Create はイベントを作成する。
func (r *PostgresEventRepo) Create(ctx context.Context, event *model.ScheduleEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO schedule_events
		 (id, user_id, title, start_time, end_time, date, is_range, is_recurring,
		  recurrence_days, reminder, reminder_minutes, color, description, tags, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		event.ID, event.UserID, event.Title, event.StartTime, event.EndTime, event.Date,
		event.IsRange, event.IsRecurring, event.RecurrenceDays, event.Reminder,
		event.ReminderMinutes, event.Color, nullableString(event.Description), event.Tags,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	return nil
}

// ListByUserAndDate は指定ユーザーが所有する指定日のイベント一覧を返す。
// 他ユーザーのイベントは決して含めない。
func (r *PostgresEventRepo) ListByUserAndDate(ctx context.Context, userID, date string) ([]*model.ScheduleEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, start_time, end_time, date, is_range, is_recurring,
		        recurrence_days, reminder, reminder_minutes, color, description, tags, created_at
		 FROM schedule_events
		 WHERE user_id = $1 AND date = $2
		 ORDER BY start_time, created_at`,
		userID, date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*model.ScheduleEvent
	for rows.Next() {
		event := &model.ScheduleEvent{}
		var description sql.NullString
		if err := rows.Scan(
			&event.ID, &event.UserID, &event.Title, &event.StartTime, &event.EndTime,
			&event.Date, &event.IsRange, &event.IsRecurring, &event.RecurrenceDays,
			&event.Reminder, &event.ReminderMinutes, &event.Color, &description,
			&event.Tags, &event.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.Description = description.String
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate events: %w", err)
	}

	return events, nil
}

// nullableString は空文字列をNULLとして永続化するためのヘルパー。
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// compile-time interface check
var _ EventRepository = (*PostgresEventRepo)(nil)
