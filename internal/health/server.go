// Package health provides health reporting for the loading bot.
//
// This package implements:
//   - Uptime monitoring
//   - Last dispatch time and outcome
//   - Queue backlog reporting
//   - The GET /health JSON handler
package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status represents the application health status.
//
// This is returned by the /health endpoint for monitoring tools.
//
// Fields:
//   - Status: Overall health status ("healthy" or "degraded")
//   - Uptime: How long the application has been running
//   - LastDispatchTime: When the last processor call finished
//   - LastDispatchStatus: "success", "error: ..." or "not started"
//   - QueueLength: Requests waiting for dispatch
//   - Transport: "connected" or "unavailable"
type Status struct {
	Status             string `json:"status"`
	Uptime             string `json:"uptime"`
	LastDispatchTime   string `json:"last_dispatch_time"`
	LastDispatchStatus string `json:"last_dispatch_status"`
	QueueLength        int    `json:"queue_length"`
	Transport          string `json:"transport"`
}

// Monitor tracks application health metrics.
//
// Thread-safety:
//   - All fields are protected by RWMutex
//   - Safe for concurrent updates from the queue worker and HTTP handlers
type Monitor struct {
	startTime          time.Time
	lastDispatchTime   time.Time
	lastDispatchStatus string
	transportUp        bool
	queueLength        func() int
	mu                 sync.RWMutex
}

// NewMonitor creates a new health monitor.
//
// Parameters:
//   - queueLength: Reports the current backlog (may be nil)
func NewMonitor(queueLength func() int) *Monitor {
	return &Monitor{
		startTime:          time.Now(),
		lastDispatchStatus: "not started",
		queueLength:        queueLength,
	}
}

// UpdateDispatchStatus records the outcome of a processor call.
//
// Parameters:
//   - status: "success" or "error: details"
func (m *Monitor) UpdateDispatchStatus(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastDispatchTime = time.Now()
	m.lastDispatchStatus = status
}

// SetTransportUp records whether the chat transport is usable.
func (m *Monitor) SetTransportUp(up bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transportUp = up
}

// GetStatus returns the current health status.
func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Status{
		Status:             "healthy",
		Uptime:             time.Since(m.startTime).Round(time.Second).String(),
		LastDispatchStatus: m.lastDispatchStatus,
		Transport:          "connected",
	}
	if !m.lastDispatchTime.IsZero() {
		s.LastDispatchTime = m.lastDispatchTime.Format("2006-01-02 15:04:05")
	}
	if !m.transportUp {
		s.Status = "degraded"
		s.Transport = "unavailable"
	}
	if m.queueLength != nil {
		s.QueueLength = m.queueLength()
	}
	return s
}

// Handler serves GET /health.
//
// Example response:
//
//	{
//	  "status": "healthy",
//	  "uptime": "1h2m3s",
//	  "last_dispatch_time": "2026-01-15 10:30:00",
//	  "last_dispatch_status": "success",
//	  "queue_length": 0,
//	  "transport": "connected"
//	}
func (m *Monitor) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(m.GetStatus())
	}
}
