package services

import (
	"context"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

type HealthSample struct {
	CapturedAt        time.Time `json:"capturedAt"`
	Database          string    `json:"database"`
	UptimeSeconds     int64     `json:"uptimeSeconds"`
	ProcessRSSBytes   int64     `json:"processRssBytes"`
	ProcessCpuLoad    float64   `json:"processCpuLoad"`
	SystemMemoryTotal int64     `json:"systemMemoryTotalBytes"`
	SystemMemoryUsed  int64     `json:"systemMemoryUsedBytes"`
}

var startedAt = time.Now()

// CaptureHealth pings the database and samples process resource usage.
// Database is "ok" or the ping error text.
func CaptureHealth(ctx context.Context, db *sqlx.DB) HealthSample {
	sample := HealthSample{
		CapturedAt:    time.Now().UTC(),
		Database:      "ok",
		UptimeSeconds: int64(time.Since(startedAt).Seconds()),
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		sample.Database = err.Error()
	}

	if proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil {
		if rss, err := proc.MemoryInfoWithContext(ctx); err == nil && rss != nil {
			sample.ProcessRSSBytes = int64(rss.RSS)
		}
		if cpuPerc, err := proc.CPUPercentWithContext(ctx); err == nil {
			sample.ProcessCpuLoad = cpuPerc / 100.0
		}
	}
	if memStat, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		sample.SystemMemoryTotal = int64(memStat.Total)
		sample.SystemMemoryUsed = int64(memStat.Total - memStat.Available)
	}
	return sample
}

func (h HealthSample) Healthy() bool {
	return h.Database == "ok"
}
