package notify

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// dequeueRetryDelay はキュー取り出し失敗後の再試行までの待機時間。
// キュー障害中にエラーログでループし続けないための間隔。
const dequeueRetryDelay = time.Second

// MetricsRecorder はメール配送メトリクスの記録インターフェース。
// metrics.Collectorの部分集合として定義する。
type MetricsRecorder interface {
	RecordMailSent()
	RecordMailFailed()
}

// Worker はキューから認証メールを取り出して配送するワーカー。
// 配送失敗はログとメトリクスに記録するのみで、リトライしない。
type Worker struct {
	queue   Queue
	mailer  Mailer
	logger  *slog.Logger
	metrics MetricsRecorder
}

// NewWorker はWorkerを生成する。
// metricsはnilでもよい（記録をスキップする）。
func NewWorker(queue Queue, mailer Mailer, logger *slog.Logger, metrics MetricsRecorder) *Worker {
	return &Worker{
		queue:   queue,
		mailer:  mailer,
		logger:  logger,
		metrics: metrics,
	}
}

// Start はctxがキャンセルされるまでキューを消費し続ける（ブロッキング）。
func (w *Worker) Start(ctx context.Context) {
	w.logger.Info("mail worker starting")

	for {
		mail, err := w.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				w.logger.Info("mail worker stopped")
				return
			}
			w.logger.Error("failed to dequeue mail", slog.String("error", err.Error()))
			select {
			case <-time.After(dequeueRetryDelay):
			case <-ctx.Done():
				w.logger.Info("mail worker stopped")
				return
			}
			continue
		}

		w.deliver(ctx, mail)
	}
}

// deliver は1通のメールを配送する。失敗は飲み込む。
func (w *Worker) deliver(ctx context.Context, mail *Mail) {
	if err := w.mailer.SendVerificationMail(ctx, mail.Email, mail.Code); err != nil {
		w.logger.Error("failed to deliver verification mail",
			slog.String("error", err.Error()),
		)
		if w.metrics != nil {
			w.metrics.RecordMailFailed()
		}
		return
	}

	w.logger.Info("verification mail delivered")
	if w.metrics != nil {
		w.metrics.RecordMailSent()
	}
}
