package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// mailQueueKey は認証メールキューのRedisリストキー。
const mailQueueKey = "verification_mail_queue"

// brpopTimeout はBRPOPの1回あたりの待機時間。
// 無期限ブロックを避け、ctxキャンセルに定期的に反応できるようにする。
const brpopTimeout = time.Second

// RedisQueue はRedisリストを使用したメールキュー。
// serveプロセスがLPUSHで積み、workerプロセスがBRPOPで取り出す。
// プロセスを分けてもキューは共有される。
type RedisQueue struct {
	rdb *redis.Client
}

// NewRedisQueue はRedisQueueを生成する。
func NewRedisQueue(rdb *redis.Client) *RedisQueue {
	return &RedisQueue{rdb: rdb}
}

// Enqueue はメールをJSONとしてキューの先頭に積む。
func (q *RedisQueue) Enqueue(ctx context.Context, mail Mail) error {
	payload, err := json.Marshal(mail)
	if err != nil {
		return fmt.Errorf("failed to marshal mail: %w", err)
	}
	if err := q.rdb.LPush(ctx, mailQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to enqueue mail: %w", err)
	}
	return nil
}

// Dequeue はキューの末尾からメールを取り出す。
// キューが空の間は短いタイムアウトでBRPOPを繰り返し、ctxのキャンセルで返る。
func (q *RedisQueue) Dequeue(ctx context.Context) (*Mail, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := q.rdb.BRPop(ctx, brpopTimeout, mailQueueKey).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to dequeue mail: %w", err)
		}

		// BRPOPは[key, value]のペアを返す
		if len(result) != 2 {
			return nil, fmt.Errorf("unexpected BRPOP result length: %d", len(result))
		}

		mail := &Mail{}
		if err := json.Unmarshal([]byte(result[1]), mail); err != nil {
			return nil, fmt.Errorf("failed to unmarshal mail: %w", err)
		}
		return mail, nil
	}
}

// compile-time interface check
var _ Queue = (*RedisQueue)(nil)
