package monitor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/KNICEX/signal-monitor/internal/schedule"
	"github.com/KNICEX/signal-monitor/internal/service/settings"
)

type MATask struct {
	monitor *MAMonitor
	ledger  *Ledger

	mu sync.Mutex
	// warm 表示 warmGen 这一代账本已经完成预热
	warm    bool
	warmGen uint64
}

func NewMATask(monitor *MAMonitor) schedule.Task {
	return &MATask{
		monitor: monitor,
		ledger:  monitor.ledger,
	}
}

// Run 按 warmup 设置决定是否静默扫描. 预热只有在至少一个单元拿到K线后
// 才算完成, 账本 Reset 之后重新预热.
func (t *MATask) Run(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	gen := t.ledger.Generation()
	silent := false
	if !t.warm || t.warmGen != gen {
		mode := t.monitor.settings.Get().Warmup
		silent = mode == settings.WarmupAlways || t.ledger.Len() == 0
		if silent {
			slog.Info("ma monitor warm-up scan", "mode", mode, "ledger", t.ledger.Len())
		}
	}
	_, fetched, err := t.monitor.scan(ctx, silent)
	if fetched > 0 {
		t.warm, t.warmGen = true, gen
	}
	return err
}

func (t *MATask) Name() string {
	return "ma monitor task"
}

type VolumeTask struct {
	monitor *VolumeMonitor
}

func NewVolumeTask(monitor *VolumeMonitor) schedule.Task {
	return &VolumeTask{
		monitor: monitor,
	}
}

func (t *VolumeTask) Run(ctx context.Context) error {
	_, err := t.monitor.Scan(ctx)
	return err
}

func (t *VolumeTask) Name() string {
	return "volume monitor task"
}
