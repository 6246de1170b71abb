package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// --- GeneralMiddleware (認証済みAPI全般) のテスト ---

func TestGeneralMiddleware_AllowsRequestsWithinLimit(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:       2,
		GeneralBurst:      5,
		RegistrationRate:  1,
		RegistrationBurst: 10,
		CleanupInterval:   1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()

	handlerCallCount := 0
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCallCount++
		w.WriteHeader(http.StatusOK)
	}))

	// バースト内の5リクエストは全て通る
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req = req.WithContext(ContextWithUserID(req.Context(), "user-1"))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("request %d: status = %d, want %d", i, w.Result().StatusCode, http.StatusOK)
		}
	}

	if handlerCallCount != 5 {
		t.Errorf("handler call count = %d, want 5", handlerCallCount)
	}
}

func TestGeneralMiddleware_Returns429WhenLimitExceeded(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:       1,
		GeneralBurst:      2,
		RegistrationRate:  1,
		RegistrationBurst: 10,
		CleanupInterval:   1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req = req.WithContext(ContextWithUserID(req.Context(), "user-1"))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)
		statuses = append(statuses, w.Result().StatusCode)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Errorf("first two requests should pass: %v", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want %d", statuses[2], http.StatusTooManyRequests)
	}
}

func TestGeneralMiddleware_LimitsPerUser(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:       1,
		GeneralBurst:      1,
		RegistrationRate:  1,
		RegistrationBurst: 10,
		CleanupInterval:   1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.GeneralMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// user-1がバーストを使い切ってもuser-2は影響を受けない
	for _, userID := range []string{"user-1", "user-2"} {
		req := httptest.NewRequest(http.MethodGet, "/events", nil)
		req = req.WithContext(ContextWithUserID(req.Context(), userID))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Errorf("%s: status = %d, want %d", userID, w.Result().StatusCode, http.StatusOK)
		}
	}

	if got := rl.GeneralLimiterCount(); got != 2 {
		t.Errorf("general limiter count = %d, want 2", got)
	}
}

func TestGeneralMiddleware_NoUserID_Returns401(t *testing.T) {
	rl := NewRateLimiter(NewRateLimiterConfig(120, 10))
	defer rl.Stop()

	mw := rl.GeneralMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// --- RegistrationMiddleware (IP単位) のテスト ---

func TestRegistrationMiddleware_LimitsPerClientIP(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:       1,
		GeneralBurst:      100,
		RegistrationRate:  1,
		RegistrationBurst: 2,
		CleanupInterval:   1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.RegistrationMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	send := func(remoteAddr string) int {
		req := httptest.NewRequest(http.MethodPost, "/register", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Result().StatusCode
	}

	// 同一IPからの3回目は429
	if got := send("10.0.0.1:1111"); got != http.StatusCreated {
		t.Errorf("request 1 status = %d, want %d", got, http.StatusCreated)
	}
	if got := send("10.0.0.1:2222"); got != http.StatusCreated {
		t.Errorf("request 2 status = %d, want %d", got, http.StatusCreated)
	}
	if got := send("10.0.0.1:3333"); got != http.StatusTooManyRequests {
		t.Errorf("request 3 status = %d, want %d", got, http.StatusTooManyRequests)
	}

	// 別IPには影響しない
	if got := send("10.0.0.2:1111"); got != http.StatusCreated {
		t.Errorf("other ip status = %d, want %d", got, http.StatusCreated)
	}
}

func TestRegistrationMiddleware_SetsRetryAfterHeader(t *testing.T) {
	cfg := RateLimiterConfig{
		GeneralRate:       1,
		GeneralBurst:      1,
		RegistrationRate:  1,
		RegistrationBurst: 1,
		CleanupInterval:   1 * time.Minute,
	}

	rl := NewRateLimiter(cfg)
	defer rl.Stop()

	mw := rl.RegistrationMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/register", nil)
	req.RemoteAddr = "10.0.0.1:1111"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	req = httptest.NewRequest(http.MethodPost, "/register", nil)
	req.RemoteAddr = "10.0.0.1:1111"
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("Retry-After header must be set on 429 responses")
	}
}

func TestNewRateLimiterConfig(t *testing.T) {
	cfg := NewRateLimiterConfig(120, 10)

	if cfg.GeneralBurst != 120 {
		t.Errorf("GeneralBurst = %d, want 120", cfg.GeneralBurst)
	}
	if cfg.RegistrationBurst != 10 {
		t.Errorf("RegistrationBurst = %d, want 10", cfg.RegistrationBurst)
	}
	if float64(cfg.GeneralRate) != 2.0 {
		t.Errorf("GeneralRate = %v, want 2.0", cfg.GeneralRate)
	}
}
