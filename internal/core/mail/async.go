package mail

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Async 没有 redis 时的进程内投递：每封一个 goroutine，进程退出前 Wait
type Async struct {
	sender  Sender
	l       *zap.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewAsync(sender Sender, l *zap.Logger) *Async {
	return &Async{sender: sender, l: l, timeout: 30 * time.Second}
}

func (a *Async) Enqueue(ctx context.Context, m Message) error {
	// 与请求生命周期解绑
	base := context.WithoutCancel(ctx)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		ctx, cancel := context.WithTimeout(base, a.timeout)
		defer cancel()
		if err := a.sender.Send(ctx, m); err != nil {
			a.l.Error("mail: send failed", zap.String("to", m.To), zap.Error(err))
			deliveries.WithLabelValues("dropped").Inc()
			return
		}
		deliveries.WithLabelValues("sent").Inc()
	}()
	return nil
}

func (a *Async) Wait() { a.wg.Wait() }
