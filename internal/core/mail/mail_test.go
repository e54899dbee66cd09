package mail

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"bookmarks-api/internal/core/config"
)

type recordingSender struct {
	mu    sync.Mutex
	fail  int // 前 fail 次返回错误
	calls int
	sent  []Message
}

func (s *recordingSender) Send(_ context.Context, m Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.fail {
		return errors.New("smtp down")
	}
	s.sent = append(s.sent, m)
	return nil
}

func newQueue(t *testing.T, s Sender, maxAttempts int) (*RedisQueue, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisQueue(rdb, "test:mail", maxAttempts, s, zap.NewNop()), mr
}

func TestAPIKeyMessage(t *testing.T) {
	m, err := APIKeyMessage("jane@example.com", "Jane", "tok-123")
	require.NoError(t, err)
	assert.Equal(t, APIKeySubject, m.Subject)
	assert.Equal(t, "jane@example.com", m.To)
	assert.Contains(t, m.Body, "Hello Jane,")
	assert.Contains(t, m.Body, "Authorization: Bearer tok-123")
}

func TestRedisQueueDelivers(t *testing.T) {
	s := &recordingSender{}
	q, mr := newQueue(t, s, 3)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, Message{To: "a@example.com", Subject: "one"}))
	require.NoError(t, q.Enqueue(ctx, Message{To: "b@example.com", Subject: "two"}))

	for {
		ok, err := q.ProcessOne(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
	}
	require.Len(t, s.sent, 2)
	assert.Equal(t, "one", s.sent[0].Subject)
	assert.Equal(t, "two", s.sent[1].Subject)
	assert.False(t, mr.Exists("test:mail:processing"))
}

func TestRedisQueueRetriesThenDrops(t *testing.T) {
	s := &recordingSender{fail: 100}
	q, mr := newQueue(t, s, 3)
	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, Message{To: "a@example.com"}))

	processed := 0
	for {
		ok, err := q.ProcessOne(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		processed++
	}
	assert.Equal(t, 3, processed)
	assert.Equal(t, 3, s.calls)
	assert.False(t, mr.Exists("test:mail"))
	assert.False(t, mr.Exists("test:mail:processing"))
}

func TestRedisQueueRetrySucceeds(t *testing.T) {
	s := &recordingSender{fail: 1}
	q, _ := newQueue(t, s, 3)
	ctx := context.Background()
	require.NoError(t, q.Enqueue(ctx, Message{To: "a@example.com"}))

	for {
		ok, err := q.ProcessOne(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
	}
	require.Len(t, s.sent, 1)
	assert.Equal(t, 1, s.sent[0].Attempts)
}

func TestRedisQueueRecover(t *testing.T) {
	q, mr := newQueue(t, &recordingSender{}, 3)
	b, _ := json.Marshal(Message{To: "left@example.com"})
	_, err := mr.Lpush("test:mail:processing", string(b))
	require.NoError(t, err)

	n, err := q.Recover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	list, err := mr.List("test:mail")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.False(t, mr.Exists("test:mail:processing"))
}

func TestAsyncDelivers(t *testing.T) {
	s := &recordingSender{}
	a := NewAsync(s, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, a.Enqueue(ctx, Message{To: "a@example.com"}))
	cancel() // 请求结束不影响投递
	a.Wait()
	assert.Len(t, s.sent, 1)
}

func TestNewSenderFallsBackToLog(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	s, err := NewSender(config.Mail{}, zap.New(core))
	require.NoError(t, err)
	require.IsType(t, LogSender{}, s)

	require.NoError(t, s.Send(context.Background(), Message{To: "a@example.com", Subject: "hi"}))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "hi", logs.All()[0].ContextMap()["subject"])

	smtp, err := NewSender(config.Mail{Host: "smtp.example.com", Port: 587, From: "x@example.com"}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &SMTPSender{}, smtp)
}
