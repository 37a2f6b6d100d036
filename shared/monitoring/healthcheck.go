package monitoring

import (
	"fmt"
	"net/http"
	"sort"
)

type HealthServer struct {
	monitor *Monitor
}

func NewHealthServer(monitor *Monitor) *HealthServer {
	return &HealthServer{monitor: monitor}
}

// Register mounts /health, /status and /metrics on mux.
func (h *HealthServer) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.healthHandler)
	mux.HandleFunc("GET /status", h.statusHandler)
	mux.HandleFunc("GET /metrics", h.metricsHandler)
}

func (h *HealthServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if h.monitor.IsHealthy() {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK - %s", h.monitor.GetStatusSummary())
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, "Service unhealthy - %s", h.monitor.GetStatusSummary())
	}
}

func (h *HealthServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "%s\n", h.monitor.GetStatusSummary())

	ops := h.monitor.Operations()
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		s := ops[name]
		fmt.Fprintf(w, "%s: %d ok, %d rejected, %d failed, last %v", name, s.Successes, s.PartialFailures, s.Failures, s.LastDuration)
		if s.LastError != "" {
			fmt.Fprintf(w, " (%s)", s.LastError)
		}
		fmt.Fprintln(w)
	}
}

// metricsHandler writes counters in the Prometheus text format.
func (h *HealthServer) metricsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	healthy := 0
	if h.monitor.IsHealthy() {
		healthy = 1
	}
	fmt.Fprintln(w, "# TYPE summarizer_healthy gauge")
	fmt.Fprintf(w, "summarizer_healthy %d\n", healthy)

	ops := h.monitor.Operations()
	names := make([]string, 0, len(ops))
	for name := range ops {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(w, "# TYPE summarizer_operations_total counter")
	for _, name := range names {
		s := ops[name]
		fmt.Fprintf(w, "summarizer_operations_total{operation=%q,outcome=\"success\"} %d\n", name, s.Successes)
		fmt.Fprintf(w, "summarizer_operations_total{operation=%q,outcome=\"rejected\"} %d\n", name, s.PartialFailures)
		fmt.Fprintf(w, "summarizer_operations_total{operation=%q,outcome=\"failure\"} %d\n", name, s.Failures)
	}

	fmt.Fprintln(w, "# TYPE summarizer_http_requests_total counter")
	for _, c := range h.monitor.Requests() {
		fmt.Fprintf(w, "summarizer_http_requests_total{route=%q,status=\"%d\"} %d\n", c.Route, c.Status, c.Count)
	}
}
