package notification

import (
	"context"
	"fmt"
	"strings"
)

// Router 根据 destination 的格式选择渠道:
//
//	https://...   discord webhook
//	tg:<chat id>  telegram
//	log           只打日志
type Router struct {
	discord  Sink
	telegram Sink
	log      Sink
}

type RouterOption func(r *Router)

func WithDiscord(s Sink) RouterOption {
	return func(r *Router) {
		r.discord = s
	}
}

func WithTelegram(s Sink) RouterOption {
	return func(r *Router) {
		r.telegram = s
	}
}

func NewRouter(opts ...RouterOption) *Router {
	r := &Router{log: LogSink{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) Deliver(ctx context.Context, destination string, msg Message) error {
	var sink Sink
	switch {
	case destination == "":
		return ErrNoDestination
	case destination == "log":
		sink = r.log
	case strings.HasPrefix(destination, "tg:"):
		sink = r.telegram
	case strings.HasPrefix(destination, "https://"), strings.HasPrefix(destination, "http://"):
		sink = r.discord
	}
	if sink == nil {
		return fmt.Errorf("notification: no sink for destination %q", destination)
	}
	return sink.Deliver(ctx, destination, msg)
}
