package model

import "time"

// ScheduleEvent はユーザーが作成したカレンダーイベントを表す。
// Tagsはタグ一覧をJSON文字列としてシリアライズした形で永続化する
// （例: "[1,3]"）。APIレスポンスでは配列に戻して返す。
type ScheduleEvent struct {
	ID              string
	UserID          string
	Title           string
	StartTime       string
	EndTime         string
	Date            string // YYYY-MM-DD
	IsRange         bool
	IsRecurring     bool
	RecurrenceDays  int
	Reminder        bool
	ReminderMinutes int
	Color           string
	Description     string
	Tags            string // JSONシリアライズ済みのタグ配列
	CreatedAt       time.Time
}
