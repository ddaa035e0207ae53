package schedule

import "context"

type Task interface {
	Run(ctx context.Context) error
	Name() string
}

type funcTask struct {
	name string
	fn   func(ctx context.Context) error
}

// NewFuncTask wraps fn as a named Task.
func NewFuncTask(name string, fn func(ctx context.Context) error) Task {
	return &funcTask{name: name, fn: fn}
}

func (t *funcTask) Run(ctx context.Context) error {
	return t.fn(ctx)
}

func (t *funcTask) Name() string {
	return t.name
}
