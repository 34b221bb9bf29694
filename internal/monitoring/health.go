package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

// HealthChecker tracks liveness of the signal pipeline for the /health
// endpoint. Connected means the delivery channel (Telegram) is reachable.
type HealthChecker struct {
	mu          sync.RWMutex
	lastSignal  time.Time
	isConnected bool
	errors      []string
}

type HealthStatus struct {
	Status      string    `json:"status"`
	Timestamp   time.Time `json:"timestamp"`
	LastSignal  time.Time `json:"last_signal,omitempty"`
	IsConnected bool      `json:"is_connected"`
	Uptime      string    `json:"uptime"`
	Errors      []string  `json:"errors,omitempty"`
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		errors: make([]string, 0),
	}
}

// SetConnected marks the delivery channel reachable or not.
func (h *HealthChecker) SetConnected(connected bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.isConnected = connected
}

// RecordSignal notes that a signal was just delivered.
func (h *HealthChecker) RecordSignal() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastSignal = time.Now()
}

// AddError records an operational error; the last ten are reported.
func (h *HealthChecker) AddError(message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, message)
	if len(h.errors) > 10 {
		h.errors = h.errors[len(h.errors)-10:]
	}
}

// ClearErrors drops the recorded errors, returning the check to healthy.
func (h *HealthChecker) ClearErrors() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = h.errors[:0]
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	code := http.StatusOK
	if !h.isConnected {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	if len(h.errors) > 0 {
		status = "unhealthy"
		code = http.StatusInternalServerError
	}

	health := HealthStatus{
		Status:      status,
		Timestamp:   time.Now(),
		LastSignal:  h.lastSignal,
		IsConnected: h.isConnected,
		Uptime:      time.Since(startTime).String(),
		Errors:      h.errors,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(health)
}
