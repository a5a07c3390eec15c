package metrics

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/agbru/fibfill/internal/logging"
)

func newTestLogger() logging.Logger {
	return logging.NewStdLoggerAdapter(log.New(io.Discard, "", 0))
}

// value reads the current value of a counter or gauge.
func value(t *testing.T, c prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	if err := c.Write(&out); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	switch {
	case out.Counter != nil:
		return out.Counter.GetValue()
	case out.Gauge != nil:
		return out.Gauge.GetValue()
	}
	t.Fatalf("unsupported metric %v", out.String())
	return 0
}

func TestNewMetrics(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	if m.handler == nil || m.Registry() == nil {
		t.Fatal("metrics not initialized")
	}
}

func TestMetrics_DestinationLifecycle(t *testing.T) {
	t.Parallel()
	m := NewMetrics()

	m.DestinationStarted()
	if got := value(t, m.active); got != 1 {
		t.Errorf("active = %v, want 1", got)
	}
	m.DestinationFinished("budget_exhausted", 1024, 80, 10*time.Millisecond)
	m.DestinationStarted()
	m.DestinationFinished("write_failure", 3, 2, time.Millisecond)
	m.DestinationSkipped()

	if got := value(t, m.active); got != 0 {
		t.Errorf("active = %v, want 0", got)
	}
	if got := value(t, m.bytesWritten); got != 1027 {
		t.Errorf("bytes = %v, want 1027", got)
	}
	if got := value(t, m.terms); got != 82 {
		t.Errorf("terms = %v, want 82", got)
	}
	if got := value(t, m.destinations.WithLabelValues("skipped")); got != 1 {
		t.Errorf("skipped = %v, want 1", got)
	}
	if got := value(t, m.destinations.WithLabelValues("write_failure")); got != 1 {
		t.Errorf("write_failure = %v, want 1", got)
	}
}

func TestMetrics_WritePrometheus(t *testing.T) {
	t.Parallel()
	m := NewMetrics()
	m.DestinationStarted()
	m.DestinationFinished("budget_exhausted", 10, 5, time.Millisecond)

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	m.WritePrometheus(rec, req)

	body := rec.Body.String()
	for _, want := range []string{
		"fibfill_bytes_written_total 10",
		"fibfill_destinations_total{status=\"budget_exhausted\"} 1",
		"fibfill_destination_duration_seconds_bucket",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output should contain %q", want)
		}
	}
}

func TestServer_handleMetrics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method string
		want   int
	}{
		{http.MethodGet, http.StatusOK},
		{http.MethodHead, http.StatusOK},
		{http.MethodPost, http.StatusMethodNotAllowed},
		{http.MethodPut, http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()
			s := NewServer("127.0.0.1:0", NewMetrics(), newTestLogger())
			req := httptest.NewRequest(tt.method, "/metrics", http.NoBody)
			rec := httptest.NewRecorder()

			s.srv.Handler.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
				t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
			}
		})
	}
}

func TestServer_StartShutdown(t *testing.T) {
	t.Parallel()
	s := NewServer("127.0.0.1:0", NewMetrics(), newTestLogger())
	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	resp, err := http.Get("http://" + s.Addr() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "fibfill_") {
		t.Errorf("unexpected response %d: %.80s", resp.StatusCode, body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}
