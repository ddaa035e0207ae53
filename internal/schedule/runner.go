package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Runner runs one Task every interval. The first cycle starts immediately
// and a cycle never overlaps its predecessor.
type Runner struct {
	task     Task
	interval func() time.Duration

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	running bool
}

// NewRunner 间隔通过函数读取, 运行期间修改配置下一轮生效
func NewRunner(task Task, interval func() time.Duration) *Runner {
	return &Runner{
		task:     task,
		interval: interval,
	}
}

// Start is a no-op when the runner is already running.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	r.running = true
	go r.loop(ctx, r.done)
}

func (r *Runner) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	for {
		start := time.Now()
		if err := r.task.Run(ctx); err != nil && ctx.Err() == nil {
			slog.Error("task run failed", "task", r.task.Name(), "error", err)
		}
		slog.Debug("task cycle done", "task", r.task.Name(), "elapsed", time.Since(start))

		wait := r.interval() - time.Since(start)
		if wait < 0 {
			wait = 0
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// Stop prevents new cycles and waits for the in-flight one, which sees its
// context cancelled.
func (r *Runner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	cancel()
	<-done
}
