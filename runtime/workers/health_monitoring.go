package workers

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"

	"campushub/observability"
)

// HealthMonitoringWorker samples the server process itself (CPU, RSS) on a
// fixed interval and feeds the monitoring manager, which the debug surface
// exposes. Pure telemetry; nothing here affects delivery.
type HealthMonitoringWorker struct {
	log            *slog.Logger
	monitoring     *observability.MonitoringManager
	metricInterval time.Duration
}

func NewHealthMonitoringWorker(log *slog.Logger,
	monitoring *observability.MonitoringManager,
	metricInterval time.Duration) *HealthMonitoringWorker {
	return &HealthMonitoringWorker{
		log:            log,
		monitoring:     monitoring,
		metricInterval: metricInterval,
	}
}

func (w *HealthMonitoringWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health monitoring")
			return nil
		case <-ticker.C:
			rss, cpu, err := selfStats(p)
			if err != nil {
				w.log.Debug("Failed to collect self stats", "err", err)
				continue
			}
			w.monitoring.RecordProcess(rss, cpu)
		}
	}
}

// selfStats retrieves memory and CPU usage for the given process.
func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
