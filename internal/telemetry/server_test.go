package telemetry

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mesoscale/mesoscaler/internal/config"
)

func TestServerRoutes(t *testing.T) {
	s := NewServer(&config.TelemetryConfig{ListenAddr: "127.0.0.1:0"}, NewCollector(), nil)

	srv := httptest.NewServer(s.http.Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || string(body) != "ok\n" {
		t.Errorf("healthz = %d %q, want 200 \"ok\\n\"", resp.StatusCode, body)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("metrics status = %d, want 200", resp.StatusCode)
	}
}

func TestServerRunStopsOnCancel(t *testing.T) {
	s := NewServer(&config.TelemetryConfig{ListenAddr: "127.0.0.1:0"}, NewCollector(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop after cancellation")
	}
}

func TestServerRunListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	defer ln.Close()

	s := NewServer(&config.TelemetryConfig{ListenAddr: ln.Addr().String()}, NewCollector(), nil)
	if err := s.Run(context.Background()); err == nil {
		t.Fatal("expected bind failure on an occupied port")
	}
}
