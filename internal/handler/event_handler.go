package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/lyfestyler/internal/event"
	"github.com/hitoshi/lyfestyler/internal/middleware"
	"github.com/hitoshi/lyfestyler/internal/model"
)

// EventServiceInterface はイベントハンドラーが必要とするサービスインターフェース。
type EventServiceInterface interface {
	// Create は認証済みユーザーのイベントを作成する。
	Create(ctx context.Context, userID string, in event.Input) (*model.ScheduleEvent, error)
	// ListByDate は認証済みユーザーが所有する指定日のイベント一覧を返す。
	ListByDate(ctx context.Context, userID, date string) ([]*model.ScheduleEvent, error)
}

// EventHandler はカレンダーイベントのHTTPハンドラー。
type EventHandler struct {
	service EventServiceInterface
}

// NewEventHandler はEventHandlerを生成する。
func NewEventHandler(service EventServiceInterface) *EventHandler {
	return &EventHandler{service: service}
}

// eventRequest はイベント作成リクエストのボディ。
// フィールド名はフロントエンドの命名に合わせてcamelCaseを使う。
type eventRequest struct {
	Title           string `json:"title"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	Date            string `json:"date"`
	IsRange         bool   `json:"isRange"`
	IsRecurring     bool   `json:"isRecurring"`
	RecurrenceDays  int    `json:"recurrenceDays"`
	Reminder        bool   `json:"reminder"`
	ReminderMinutes int    `json:"reminderMinutes"`
	Color           string `json:"color"`
	Description     string `json:"description"`
	Tags            []int  `json:"tags"`
}

// eventResponse はイベントのAPIレスポンス。
// タグは永続化されたJSON文字列を配列に戻して返す。
type eventResponse struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	Date            string `json:"date"`
	IsRange         bool   `json:"isRange"`
	IsRecurring     bool   `json:"isRecurring"`
	RecurrenceDays  int    `json:"recurrenceDays"`
	Reminder        bool   `json:"reminder"`
	ReminderMinutes int    `json:"reminderMinutes"`
	Color           string `json:"color"`
	Description     string `json:"description"`
	Tags            []int  `json:"tags"`
}

// Create はイベント作成を処理する。
// POST /events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("failed to parse request body"))
		return
	}

	ev, err := h.service.Create(r.Context(), userID, event.Input{
		Title:           req.Title,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		Date:            req.Date,
		IsRange:         req.IsRange,
		IsRecurring:     req.IsRecurring,
		RecurrenceDays:  req.RecurrenceDays,
		Reminder:        req.Reminder,
		ReminderMinutes: req.ReminderMinutes,
		Color:           req.Color,
		Description:     req.Description,
		Tags:            req.Tags,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toEventResponse(ev))
}

// List は指定日のイベント一覧を返す。
// GET /events?date=YYYY-MM-DD
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	date := r.URL.Query().Get("date")
	if date == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("date query parameter is required"))
		return
	}

	events, err := h.service.ListByDate(r.Context(), userID, date)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]eventResponse, 0, len(events))
	for _, ev := range events {
		resp = append(resp, toEventResponse(ev))
	}
	writeJSON(w, http.StatusOK, resp)
}

// toEventResponse はドメインモデルをAPIレスポンスに変換する。
func toEventResponse(ev *model.ScheduleEvent) eventResponse {
	return eventResponse{
		ID:              ev.ID,
		Title:           ev.Title,
		StartTime:       ev.StartTime,
		EndTime:         ev.EndTime,
		Date:            ev.Date,
		IsRange:         ev.IsRange,
		IsRecurring:     ev.IsRecurring,
		RecurrenceDays:  ev.RecurrenceDays,
		Reminder:        ev.Reminder,
		ReminderMinutes: ev.ReminderMinutes,
		Color:           ev.Color,
		Description:     ev.Description,
		Tags:            event.DecodeTags(ev.Tags),
	}
}
