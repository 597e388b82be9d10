// Package health serves the liveness and readiness probes.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

const (
	defaultDBTimeout    = 500 * time.Millisecond
	defaultRedisTimeout = 300 * time.Millisecond
)

// notReady gates readiness during shutdown. Zero value means ready, so
// a freshly started process serves traffic as soon as probes pass.
var notReady atomic.Bool

// SetReady flips the readiness gate. The entrypoint calls SetReady(false)
// when shutdown begins so load balancers drain the instance.
func SetReady(ready bool) {
	notReady.Store(!ready)
}

// Checker probes the dependencies readiness cares about: the store and
// tax-type database and the resolution cache.
type Checker interface {
	PingDB(ctx context.Context, timeout time.Duration) error
	PingRedis(ctx context.Context, timeout time.Duration) error
}

// Handler exposes the probe endpoints.
type Handler struct {
	Checker      Checker
	DBTimeout    time.Duration
	RedisTimeout time.Duration
}

// probeReport is the readiness payload; each field holds "ok" or the
// probe's error text.
type probeReport struct {
	DB    string `json:"db"`
	Redis string `json:"redis"`
}

func (r probeReport) healthy() bool {
	return r.DB == "ok" && r.Redis == "ok"
}

// Live reports process liveness. It never probes dependencies: a
// degraded database must not get the process restarted.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness: the shutdown gate first, then dependency
// probes, each under its own timeout.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if notReady.Load() {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}
	if h.Checker == nil {
		http.Error(w, "dependencies unavailable", http.StatusServiceUnavailable)
		return
	}

	ctx := r.Context()
	report := probeReport{DB: "ok", Redis: "ok"}
	if err := h.Checker.PingDB(ctx, orDefault(h.DBTimeout, defaultDBTimeout)); err != nil {
		report.DB = err.Error()
	}
	if err := h.Checker.PingRedis(ctx, orDefault(h.RedisTimeout, defaultRedisTimeout)); err != nil {
		report.Redis = err.Error()
	}

	w.Header().Set("Content-Type", "application/json")
	if report.healthy() {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(report)
}

func orDefault(d, fallback time.Duration) time.Duration {
	if d <= 0 {
		return fallback
	}
	return d
}
