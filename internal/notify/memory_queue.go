package notify

import "context"

// memoryQueueCapacity はメモリキューのバッファサイズ。
// バッファが満杯の場合、Enqueueはワーカーが追いつくまでブロックする。
const memoryQueueCapacity = 256

// MemoryQueue はプロセス内チャネルを使用したメールキュー。
// Redisを使わない開発環境とテストで使用する。
type MemoryQueue struct {
	ch chan Mail
}

// NewMemoryQueue はMemoryQueueを生成する。
func NewMemoryQueue() *MemoryQueue {
	return &MemoryQueue{ch: make(chan Mail, memoryQueueCapacity)}
}

// Enqueue はメールをチャネルに積む。
func (q *MemoryQueue) Enqueue(ctx context.Context, mail Mail) error {
	select {
	case q.ch <- mail:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue はチャネルからメールを取り出す。空の間はブロックする。
func (q *MemoryQueue) Dequeue(ctx context.Context) (*Mail, error) {
	select {
	case mail := <-q.ch:
		return &mail, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// compile-time interface check
var _ Queue = (*MemoryQueue)(nil)
