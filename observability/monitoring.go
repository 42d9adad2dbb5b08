// Package observability aggregates runtime telemetry for the debug surface.
package observability

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// MonitoringStats is the snapshot served to the debug endpoints.
type MonitoringStats struct {
	ActiveConnections int64  `json:"active_connections"`
	EventsDelivered   uint64 `json:"events_delivered"`
	DeliveryFailures  uint64 `json:"delivery_failures"`
	MessagesPersisted uint64 `json:"messages_persisted"`
	NotificationsSent uint64 `json:"notifications_sent"`
	BroadcastsSent    uint64 `json:"broadcasts_sent"`

	ProcessRSSMb  uint64  `json:"process_rss_mb"`
	ProcessCPUPct float64 `json:"process_cpu_pct"`
	AllocMemMb    uint64  `json:"alloc_mem_mb"`
	NumGoroutine  int     `json:"num_goroutine"`
	NumGC         uint32  `json:"num_gc"`
	CollectedAt   string  `json:"collected_at"`
}

// MonitoringManager collects counters from the hot path with atomics only;
// the mutex guards the slower process sample written by the health worker.
type MonitoringManager struct {
	log *slog.Logger

	activeConnections atomic.Int64
	eventsDelivered   atomic.Uint64
	deliveryFailures  atomic.Uint64
	messagesPersisted atomic.Uint64
	notificationsSent atomic.Uint64
	broadcastsSent    atomic.Uint64

	mu            sync.RWMutex
	processRSS    uint64
	processCPUPct float64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log}
}

func (mm *MonitoringManager) ConnectionOpened() {
	mm.activeConnections.Add(1)
}

func (mm *MonitoringManager) ConnectionClosed() {
	mm.activeConnections.Add(-1)
}

func (mm *MonitoringManager) IncrEventsDelivered(n uint64) {
	mm.eventsDelivered.Add(n)
}

func (mm *MonitoringManager) IncrDeliveryFailures(n uint64) {
	mm.deliveryFailures.Add(n)
}

func (mm *MonitoringManager) IncrMessagesPersisted() {
	mm.messagesPersisted.Add(1)
}

func (mm *MonitoringManager) IncrNotificationsSent() {
	mm.notificationsSent.Add(1)
}

func (mm *MonitoringManager) IncrBroadcastsSent() {
	mm.broadcastsSent.Add(1)
}

// RecordProcess stores the latest sample taken by the health worker.
func (mm *MonitoringManager) RecordProcess(rssBytes uint64, cpuPct float64) {
	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.processRSS = rssBytes
	mm.processCPUPct = cpuPct
}

// GetLatest assembles a point-in-time snapshot; Go runtime metrics are read
// on demand rather than cached.
func (mm *MonitoringManager) GetLatest() MonitoringStats {
	mm.mu.RLock()
	rss := mm.processRSS
	cpu := mm.processCPUPct
	mm.mu.RUnlock()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return MonitoringStats{
		ActiveConnections: mm.activeConnections.Load(),
		EventsDelivered:   mm.eventsDelivered.Load(),
		DeliveryFailures:  mm.deliveryFailures.Load(),
		MessagesPersisted: mm.messagesPersisted.Load(),
		NotificationsSent: mm.notificationsSent.Load(),
		BroadcastsSent:    mm.broadcastsSent.Load(),
		ProcessRSSMb:      rss / 1024 / 1024,
		ProcessCPUPct:     cpu,
		AllocMemMb:        m.Alloc / 1024 / 1024,
		NumGoroutine:      runtime.NumGoroutine(),
		NumGC:             m.NumGC,
		CollectedAt:       time.Now().Format(time.RFC3339),
	}
}
