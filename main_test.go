package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestServe_StoreFailureShutsDownTracing(t *testing.T) {
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	options := &Options{}
	options.Store = "sqlite"
	options.TracingEndpoint = collector.URL + "/v1/traces"

	ctx := context.Background()
	err := serve(ctx, options, &http.Server{}, discardLogger())
	if err == nil || !strings.Contains(err.Error(), `unknown store "sqlite"`) {
		t.Fatalf("serve err = %v", err)
	}

	_, span := otel.Tracer("test").Start(ctx, "after failure")
	defer span.End()
	if span.IsRecording() {
		t.Fatal("tracer provider still running after serve returned")
	}
}

func TestServe_ClosedServer(t *testing.T) {
	options := &Options{}
	options.Store = "memory"
	srv := &http.Server{Addr: "127.0.0.1:0"}
	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := serve(context.Background(), options, srv, discardLogger()); err != nil {
		t.Fatalf("serve = %v, want nil after shutdown", err)
	}
	if srv.Handler == nil {
		t.Fatal("serve did not install the router")
	}
}

func TestLegacyEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("SERVICE_PORT", "")
	t.Setenv("SERVICE_MONGODB_URI", "")
	t.Setenv("SERVICE_STORE", "")

	legacyEnv()

	for key, want := range map[string]string{
		"SERVICE_PORT":        "8080",
		"SERVICE_MONGODB_URI": "mongodb://localhost:27017",
		"SERVICE_STORE":       "mongodb",
	} {
		if got := os.Getenv(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
}

func TestLegacyEnv_ServiceVariablesWin(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("SERVICE_PORT", "3001")
	t.Setenv("SERVICE_MONGODB_URI", "")
	t.Setenv("SERVICE_STORE", "postgres")

	legacyEnv()

	if got := os.Getenv("SERVICE_PORT"); got != "3001" {
		t.Errorf("SERVICE_PORT = %q, want 3001", got)
	}
	if got := os.Getenv("SERVICE_STORE"); got != "postgres" {
		t.Errorf("SERVICE_STORE = %q, want postgres", got)
	}
}
