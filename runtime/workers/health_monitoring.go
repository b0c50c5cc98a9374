package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"gatechat/contract"
	"gatechat/observability"

	_ "github.com/shirou/gopsutil"
	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*HealthMonitoringWorker)(nil)

// HealthMonitoringWorker samples the session's own process at a fixed
// interval and feeds memory and CPU figures into the stats snapshot.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	stats          *observability.SessionStats
	metricInterval time.Duration
}

func NewHealthMonitoringWorker(log *slog.Logger, stats *observability.SessionStats, metricInterval time.Duration) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{log: log, stats: stats, metricInterval: metricInterval}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Stopping health monitoring")
			return nil
		case <-ticker.C:
			w.sample(proc)
		}
	}
}

func (w *HealthMonitoringWorker) sample(proc *process.Process) {
	memory, err := proc.MemoryInfo()
	if err != nil {
		w.log.Debug("Memory sampling failed", "error", err)
		return
	}
	cpu, err := proc.CPUPercent()
	if err != nil {
		w.log.Debug("CPU sampling failed", "error", err)
		return
	}
	w.stats.RecordProcessSample(memory.RSS, cpu)
}
