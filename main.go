package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/amritsagoo91/phonebook-demo/cli/api"
	"github.com/amritsagoo91/phonebook-demo/cli/logger"
	"github.com/amritsagoo91/phonebook-demo/cli/tracing"
	"github.com/amritsagoo91/phonebook-demo/phonebook"
)

// Set with -ldflags "-X main.version=...".
var (
	version  = "dev"
	revision = ""
	created  = ""
)

const title = "Phonebook API"

// Options for the CLI. Each option can be set with a flag such as `--port`
// or with the matching `SERVICE_*` environment variable such as `SERVICE_PORT`.
type Options struct {
	logger.Options
	api.ServerOptions
	api.RouterOptions
	api.StoreOptions
	tracing.ExporterOptions
}

func main() {
	legacyEnv()

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		log := logger.New(&options.Options)
		slog.SetDefault(log)
		srv := api.NewServer(&options.ServerOptions, nil, log)

		hooks.OnStart(func() {
			if err := serve(context.Background(), options, srv, log); err != nil {
				log.Error("server failed", "err", err)
				os.Exit(1)
			}
		})
		hooks.OnStop(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			err := srv.Shutdown(ctx)
			if err != nil {
				log.Warn("could not shutdown the server", "err", err)
			}
		})
	})
	cli.Run()
}

// serve opens the tracing exporter and the store, then serves until srv is
// shut down. Both are released before it returns.
func serve(ctx context.Context, options *Options, srv *http.Server, log *slog.Logger) error {
	shutdownTracing, err := tracing.Init(ctx, &options.ExporterOptions)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn("could not flush traces", "err", err)
		}
	}()

	store, err := api.OpenStore(ctx, &options.StoreOptions, log)
	if err != nil {
		return fmt.Errorf("open %q store: %w", options.Store, err)
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			log.Warn("could not close the store", "err", err)
		}
	}()

	handler := api.NewRouter(&options.RouterOptions, title, version, revision, created,
		phonebook.NewService(store), store.Ping, log)
	srv.Handler = otelhttp.NewHandler(handler, "phonebook-http")

	log.Info("server is running", "addr", srv.Addr, "store", options.Store)
	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}
	log.Info("server closed")
	return nil
}

// legacyEnv maps the PORT and MONGODB_URI variables onto their SERVICE_*
// equivalents. MONGODB_URI alone selects the mongodb store.
func legacyEnv() {
	for legacy, current := range map[string]string{
		"PORT":        "SERVICE_PORT",
		"MONGODB_URI": "SERVICE_MONGODB_URI",
	} {
		if v, ok := os.LookupEnv(legacy); ok && os.Getenv(current) == "" {
			_ = os.Setenv(current, v)
		}
	}
	if os.Getenv("MONGODB_URI") != "" && os.Getenv("SERVICE_STORE") == "" {
		_ = os.Setenv("SERVICE_STORE", "mongodb")
	}
}
