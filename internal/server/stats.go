package server

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Stats describe the process tree root of a running server.
type Stats struct {
	PID        int       `json:"pid" yaml:"pid"`
	CPUPercent float64   `json:"cpu_percent" yaml:"cpu_percent"`
	RSS        uint64    `json:"rss" yaml:"rss"`
	Started    time.Time `json:"started" yaml:"started"`
}

// Uptime is the time since the process started.
func (s Stats) Uptime() time.Duration {
	if s.Started.IsZero() {
		return 0
	}
	return time.Since(s.Started).Truncate(time.Second)
}

// Stats samples the session's pane process.
func (s *Server) Stats(ctx context.Context) (Stats, error) {
	pid, err := s.mux.PanePID(ctx, s.Session)
	if err != nil {
		return Stats{}, err
	}
	return processStats(ctx, pid)
}

func processStats(ctx context.Context, pid int) (Stats, error) {
	p, err := process.NewProcessWithContext(ctx, int32(pid))
	if err != nil {
		return Stats{}, fmt.Errorf("process %d: %w", pid, err)
	}

	st := Stats{PID: pid}
	if cpu, err := p.CPUPercentWithContext(ctx); err == nil {
		st.CPUPercent = cpu
	}
	if mem, err := p.MemoryInfoWithContext(ctx); err == nil && mem != nil {
		st.RSS = mem.RSS
	}
	if created, err := p.CreateTimeWithContext(ctx); err == nil {
		st.Started = time.UnixMilli(created)
	}
	return st, nil
}
