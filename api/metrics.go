package api

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// requestMetrics accumulates per-stage timings for one request and emits a
// single structured log line when the handler finishes.
type requestMetrics struct {
	logger        *log.Logger
	route         string
	start         time.Time
	stages        map[string]time.Duration
	tasksReturned int
	errorStage    string
}

func newRequestMetrics(route string, logger *log.Logger) *requestMetrics {
	return &requestMetrics{
		logger: logger,
		route:  route,
		start:  time.Now(),
		stages: make(map[string]time.Duration, 4),
	}
}

func (m *requestMetrics) ObserveStage(name string, duration time.Duration) {
	if m == nil || duration <= 0 {
		return
	}
	m.stages[name] = duration
}

func (m *requestMetrics) SetTasksReturned(count int) {
	if m == nil {
		return
	}
	if count < 0 {
		count = 0
	}
	m.tasksReturned = count
}

func (m *requestMetrics) SetErrorStage(stage string) {
	if m == nil || stage == "" {
		return
	}
	m.errorStage = stage
}

func (m *requestMetrics) Log(status int, err error) {
	if m == nil || m.logger == nil {
		return
	}

	fields := log.Fields{
		"route":          m.route,
		"status":         status,
		"total_ms":       durationToMillis(time.Since(m.start)),
		"tasks_returned": m.tasksReturned,
	}
	for name, d := range m.stages {
		fields[name+"_ms"] = durationToMillis(d)
	}
	if m.errorStage != "" {
		fields["error_stage"] = m.errorStage
	}
	if err != nil {
		fields["error"] = err.Error()
	}

	m.logger.WithFields(fields).Info("tasks.request.metrics")
}

func durationToMillis(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(d) / float64(time.Millisecond)
}
