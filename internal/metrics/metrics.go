// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// ハンドラー・ワークフロー・メールワーカーから利用する。
type Collector struct {
	registrations prometheus.Counter
	verifySuccess prometheus.Counter
	verifyFail    prometheus.Counter
	loginSuccess  prometheus.Counter
	loginFail     prometheus.Counter
	mailsSent     prometheus.Counter
	mailsFailed   prometheus.Counter
	httpStatus    *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lyfestyler_registrations_total",
			Help: "ユーザー登録成功の合計数",
		}),
		verifySuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lyfestyler_verifications_success_total",
			Help: "メール認証成功の合計数",
		}),
		verifyFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lyfestyler_verifications_fail_total",
			Help: "メール認証失敗の合計数",
		}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lyfestyler_logins_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lyfestyler_logins_fail_total",
			Help: "ログイン失敗の合計数",
		}),
		mailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lyfestyler_mails_sent_total",
			Help: "認証メール配送成功の合計数",
		}),
		mailsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lyfestyler_mails_failed_total",
			Help: "認証メール配送失敗の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lyfestyler_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.registrations,
		c.verifySuccess,
		c.verifyFail,
		c.loginSuccess,
		c.loginFail,
		c.mailsSent,
		c.mailsFailed,
		c.httpStatus,
	)

	return c
}

// RecordRegistration はユーザー登録成功を記録する。
func (c *Collector) RecordRegistration() {
	c.registrations.Inc()
}

// RecordVerification はメール認証の成否を記録する。
func (c *Collector) RecordVerification(success bool) {
	if success {
		c.verifySuccess.Inc()
		return
	}
	c.verifyFail.Inc()
}

// RecordLogin はログインの成否を記録する。
func (c *Collector) RecordLogin(success bool) {
	if success {
		c.loginSuccess.Inc()
		return
	}
	c.loginFail.Inc()
}

// RecordMailSent は認証メールの配送成功を記録する。
func (c *Collector) RecordMailSent() {
	c.mailsSent.Inc()
}

// RecordMailFailed は認証メールの配送失敗を記録する。
func (c *Collector) RecordMailFailed() {
	c.mailsFailed.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
