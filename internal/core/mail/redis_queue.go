package mail

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const defaultMaxAttempts = 5

// RedisQueue 基于 list 的可靠队列：BLMOVE 到 processing，成功后 LREM（至少一次）
type RedisQueue struct {
	rdb         *redis.Client
	key         string
	processing  string
	maxAttempts int
	sender      Sender
	l           *zap.Logger

	Block   time.Duration // BLMOVE 阻塞时长
	Backoff time.Duration // redis 出错后的等待
}

func NewRedisQueue(rdb *redis.Client, key string, maxAttempts int, sender Sender, l *zap.Logger) *RedisQueue {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	return &RedisQueue{
		rdb:         rdb,
		key:         key,
		processing:  key + ":processing",
		maxAttempts: maxAttempts,
		sender:      sender,
		l:           l,
		Block:       2 * time.Second,
		Backoff:     time.Second,
	}
}

func (q *RedisQueue) Enqueue(ctx context.Context, m Message) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return q.rdb.LPush(ctx, q.key, b).Err()
}

// Run worker 主循环，ctx 取消后返回
func (q *RedisQueue) Run(ctx context.Context) error {
	if n, err := q.Recover(ctx); err != nil {
		return err
	} else if n > 0 {
		q.l.Info("mail queue: requeued unfinished messages", zap.Int("count", n))
	}
	for {
		if ctx.Err() != nil {
			return nil
		}
		raw, err := q.rdb.BLMove(ctx, q.key, q.processing, "RIGHT", "LEFT", q.Block).Result()
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if ctx.Err() != nil {
				return nil
			}
			q.l.Warn("mail queue: pop failed", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(q.Backoff):
			}
			continue
		}
		q.handle(ctx, raw)
	}
}

// ProcessOne 非阻塞处理一条；队列为空返回 false
func (q *RedisQueue) ProcessOne(ctx context.Context) (bool, error) {
	raw, err := q.rdb.LMove(ctx, q.key, q.processing, "RIGHT", "LEFT").Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	q.handle(ctx, raw)
	return true, nil
}

// Recover 把上次进程遗留在 processing 的消息放回队首
func (q *RedisQueue) Recover(ctx context.Context) (int, error) {
	n := 0
	for {
		err := q.rdb.LMove(ctx, q.processing, q.key, "RIGHT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
	}
}

func (q *RedisQueue) handle(ctx context.Context, raw string) {
	var m Message
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		q.l.Error("mail queue: drop malformed message", zap.Error(err))
		q.ack(ctx, raw)
		deliveries.WithLabelValues("dropped").Inc()
		return
	}

	err := q.sender.Send(ctx, m)
	if err == nil {
		q.ack(ctx, raw)
		deliveries.WithLabelValues("sent").Inc()
		return
	}

	m.Attempts++
	if m.Attempts >= q.maxAttempts {
		q.l.Error("mail queue: giving up",
			zap.String("to", m.To), zap.Int("attempts", m.Attempts), zap.Error(err))
		q.ack(ctx, raw)
		deliveries.WithLabelValues("dropped").Inc()
		return
	}

	q.l.Warn("mail queue: send failed, retrying",
		zap.String("to", m.To), zap.Int("attempts", m.Attempts), zap.Error(err))
	b, _ := json.Marshal(m)
	_, perr := q.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LRem(ctx, q.processing, 1, raw)
		p.LPush(ctx, q.key, b)
		return nil
	})
	if perr != nil {
		q.l.Error("mail queue: requeue failed", zap.Error(perr))
		return
	}
	deliveries.WithLabelValues("retried").Inc()
}

func (q *RedisQueue) ack(ctx context.Context, raw string) {
	if err := q.rdb.LRem(ctx, q.processing, 1, raw).Err(); err != nil {
		q.l.Warn("mail queue: ack failed", zap.Error(err))
	}
}
