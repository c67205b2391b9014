// Package procstat samples resource usage of a running child process.
package procstat

import (
	"log/slog"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Stats aggregates the samples taken over one watch.
type Stats struct {
	Samples       int
	PeakRSSMB     float64 // highest resident set size seen, in MB
	MaxCPUPercent float64
	MaxThreads    int32
}

// Monitor samples one process in the background until stopped.
type Monitor struct {
	stop  chan struct{}
	done  chan struct{}
	stats Stats
}

// Watch starts sampling the process with the given PID every interval.
// Sampling is best effort: a failed sample (the process may already be gone)
// is skipped, not reported.
func Watch(pid int, interval time.Duration) *Monitor {
	m := &Monitor{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go m.loop(int32(pid), interval)
	return m
}

// Stop ends sampling and returns the aggregated stats.
func (m *Monitor) Stop() Stats {
	close(m.stop)
	<-m.done
	return m.stats
}

func (m *Monitor) loop(pid int32, interval time.Duration) {
	defer close(m.done)

	proc, err := process.NewProcess(pid)
	if err != nil {
		slog.Debug("Process gone before first sample", "pid", pid, "error", err)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.sample(proc)
		select {
		case <-m.stop:
			return
		case <-ticker.C:
		}
	}
}

// sample takes one reading. Individual metrics may fail for short-lived
// processes; each is ignored independently.
func (m *Monitor) sample(proc *process.Process) {
	sampled := false

	if memInfo, err := proc.MemoryInfo(); err == nil {
		rssMB := float64(memInfo.RSS) / 1024 / 1024
		if rssMB > m.stats.PeakRSSMB {
			m.stats.PeakRSSMB = rssMB
		}
		sampled = true
	}

	if cpuPercent, err := proc.CPUPercent(); err == nil {
		if cpuPercent > m.stats.MaxCPUPercent {
			m.stats.MaxCPUPercent = cpuPercent
		}
		sampled = true
	}

	if numThreads, err := proc.NumThreads(); err == nil {
		if numThreads > m.stats.MaxThreads {
			m.stats.MaxThreads = numThreads
		}
		sampled = true
	}

	if sampled {
		m.stats.Samples++
	}
}
