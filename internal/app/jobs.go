package app

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/mem"
	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"
)

// MonitorStatus is the snapshot shown on the status view: the latest
// backend probe result plus process resource usage.
type MonitorStatus struct {
	StartedAt      time.Time
	BackendOK      bool
	BackendLatency time.Duration
	LastProbeAt    time.Time
	ProbeMessage   string
	CPUPercent     float64
	MemoryMB       uint64
	SystemMemUsed  uint64
	Goroutines     int
}

func (a *Application) Monitor() MonitorStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.monitor
}

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// StartBackgroundJobs sets up the recurring monitor tasks driving the
// backend probe and the process monitor.
func (a *Application) StartBackgroundJobs(ctx context.Context) {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedBackendProbeTask(ctx)
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()

	// Prime the status view so it does not sit empty until the first tick.
	go a.SchedBackendProbeTask(ctx)
	go a.SchedProcessMonitorTask()
}

// SchedBackendProbeTask issues a timed read against the catalog backend and
// records reachability for the status view.
func (a *Application) SchedBackendProbeTask(ctx context.Context) {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	pctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	latency, err := a.api.Probe(pctx)

	a.mu.Lock()
	a.monitor.LastProbeAt = time.Now()
	a.monitor.BackendLatency = latency
	if err != nil {
		a.monitor.BackendOK = false
		a.monitor.ProbeMessage = err.Error()
	} else {
		a.monitor.BackendOK = true
		a.monitor.ProbeMessage = "ok"
	}
	a.mu.Unlock()

	if err != nil {
		zap.L().Warn("backend probe failed", zap.Duration("latency", latency), zap.Error(err))
		return
	}
	zap.L().Debug("backend probe ok", zap.Duration("latency", latency))
}

// SchedProcessMonitorTask collects process resource usage.
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	a.mu.Lock()
	a.monitor.Goroutines = runtime.NumGoroutine()
	a.mu.Unlock()

	if meminfo, err := mem.VirtualMemory(); err == nil {
		a.mu.Lock()
		a.monitor.SystemMemUsed = meminfo.Used / 1024 / 1024
		a.mu.Unlock()
	}

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}

	if cpuuse, err := p.CPUPercent(); err == nil {
		a.mu.Lock()
		a.monitor.CPUPercent = cpuuse
		a.mu.Unlock()
	}
	if meminfo, err := p.MemoryInfo(); err == nil {
		a.mu.Lock()
		a.monitor.MemoryMB = meminfo.RSS / 1024 / 1024
		a.mu.Unlock()
	}
}
