package notification

import (
	"context"
	"errors"
	"time"
)

// ErrNoDestination 该类信号没有配置投递目标
var ErrNoDestination = errors.New("notification: destination not configured")

type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// Message 与渠道无关的通知内容, 各 Sink 自行渲染
type Message struct {
	Title     string
	URL       string
	Color     int
	Fields    []Field
	Footer    string
	Timestamp time.Time
}

// Sink delivers a message to a destination, once. Retrying is up to the caller.
type Sink interface {
	Deliver(ctx context.Context, destination string, msg Message) error
}

type SinkFunc func(ctx context.Context, destination string, msg Message) error

func (f SinkFunc) Deliver(ctx context.Context, destination string, msg Message) error {
	return f(ctx, destination, msg)
}
