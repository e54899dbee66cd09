package mail

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Message 一封待投递的邮件
type Message struct {
	To       string `json:"to"`
	Name     string `json:"name"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Attempts int    `json:"attempts,omitempty"`
}

// Sender 真正发信（SMTP / 日志）
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Queue 投递入口：只负责入队，不等待结果
type Queue interface {
	Enqueue(ctx context.Context, m Message) error
}

var deliveries = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "mail_deliveries_total", Help: "Mail delivery outcomes"},
	[]string{"result"}, // sent / retried / dropped
)

func init() { prometheus.MustRegister(deliveries) }
