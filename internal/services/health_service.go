package services

import (
	"context"
	"time"
)

// Pinger is any dependency that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type DependencyStatus struct {
	Connected bool      `json:"connected"`
	CheckedAt time.Time `json:"checked_at"`
	Error     string    `json:"error,omitempty"`
}

type HealthReport struct {
	OK           bool                        `json:"ok"`
	Dependencies map[string]DependencyStatus `json:"dependencies"`
}

// HealthService pings every dependency on each call; results are not cached.
type HealthService interface {
	Check(ctx context.Context) HealthReport
}

type healthService struct {
	deps    map[string]Pinger
	timeout time.Duration
	now     func() time.Time
}

func NewHealthService(deps map[string]Pinger, timeout time.Duration) HealthService {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &healthService{deps: deps, timeout: timeout, now: time.Now}
}

func (s *healthService) Check(ctx context.Context) HealthReport {
	out := HealthReport{OK: true, Dependencies: make(map[string]DependencyStatus, len(s.deps))}
	for name, dep := range s.deps {
		pctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := dep.Ping(pctx)
		cancel()

		st := DependencyStatus{Connected: err == nil, CheckedAt: s.now().UTC()}
		if err != nil {
			st.Error = err.Error()
			out.OK = false
		}
		out.Dependencies[name] = st
	}
	return out
}
