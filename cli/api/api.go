package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/danielgtaylor/huma/v2"

	"github.com/amritsagoo91/phonebook-demo/handlers"
	"github.com/amritsagoo91/phonebook-demo/phonebook"
	"github.com/amritsagoo91/phonebook-demo/router"
)

type ServerOptions struct {
	Host              string        `short:"H" doc:"host to listen on"                    default:""`
	Port              string        `short:"p" doc:"port to listen on"                    default:"3001"`
	ReadHeaderTimeout time.Duration `          doc:"time allowed to read request headers" default:"15s"`
}

func NewServer(options *ServerOptions, handler http.Handler, logger *slog.Logger) *http.Server {
	return &http.Server{
		Addr:              options.Host + ":" + options.Port,
		ReadHeaderTimeout: options.ReadHeaderTimeout,
		Handler:           handler,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}
}

type RouterOptions struct {
	EndpointsPrefix string `doc:"mount endpoints at a prefix"                    default:"/api"`
	StaticDir       string `doc:"serve files from a directory for unknown paths"`
}

func NewRouter(
	options *RouterOptions,
	title string,
	version string,
	revision string,
	created string,
	service *phonebook.Service,
	ping func(context.Context) error,
	logger *slog.Logger,
) http.Handler {
	buildinfoMetric := joinQuote("build_info{goversion=", runtime.Version(),
		",title=", title,
		",version=", version,
		",revision=", revision,
		",created=", created,
		"} 1\n")
	metriks := metrics.NewSet()
	errorHandler := ctxlog{}.errorHandler(logger)
	return router.New(title, version,
		func(w http.ResponseWriter, r *http.Request) {
			if ping == nil {
				return
			}
			if err := ping(r.Context()); err != nil {
				logger.LogAttrs(r.Context(), slog.LevelWarn, "store not ready", slog.Any("err", err))
				w.WriteHeader(http.StatusServiceUnavailable)
			}
		},
		func(w http.ResponseWriter, _ *http.Request) {
			fmt.Fprint(w, buildinfoMetric)
			metriks.WritePrometheus(w)
			metrics.WriteProcessMetrics(w)
		},
		router.Fallback(options.StaticDir, logger),
		router.OptUseMiddleware(
			ctxlog{}.loggerMiddleware(logger),
			newOperationMetrics(metriks, service).middleware,
			ctxlog{}.recoverMiddleware(logger),
		),
		router.OptAutoRegister(&handlers.Info{
			Service:      service,
			ErrorHandler: errorHandler,
		}),
		router.OptGroup(options.EndpointsPrefix,
			router.OptAutoRegister(&handlers.Persons{
				Service:      service,
				ErrorHandler: errorHandler,
			}),
		),
	)
}

// ctxlog is a [context.Context] key and acts as a virtual package for operations related to it.
type ctxlog struct{}

// uniqueNameMarker replaces the body of POST requests rejected as conflicts in access logs.
const uniqueNameMarker = `{"error":"Name must be unique"}`

// loggerMiddleware returns a middleware that sets a [slog.Logger] in
// the [context.Context] and logs the request after it has terminated.
// POST requests also log their body, unless the request was rejected as a
// conflict, in which case the body is replaced by a marker.
func (key ctxlog) loggerMiddleware(parent *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		logger := parent.With("x-request-id", ctx.Header("X-Request-Id"))

		start := time.Now()
		next(huma.WithValue(ctx, key, logger.WithGroup("op").With("id", ctx.Operation().OperationID)))

		attrs := []slog.Attr{
			slog.String("from", ctx.RemoteAddr()),
			slog.String("ref", ctx.Header("Referer")),
			slog.String("ua", ctx.Header("User-Agent")),
			slog.Int("status", ctx.Status()),
			slog.Duration("dur", time.Since(start)),
		}
		if ctx.Method() == http.MethodPost {
			attrs = append(attrs, slog.String("body", postBody(ctx)))
		}

		logger.LogAttrs(context.Background(), slog.LevelInfo,
			ctx.Operation().Method+" "+ctx.Operation().Path+" "+ctx.Version().Proto,
			attrs...,
		)
	}
}

func postBody(ctx huma.Context) string {
	if ctx.Status() == http.StatusConflict {
		return uniqueNameMarker
	}
	body, _ := router.CapturedBody(ctx.Context())
	var compact bytes.Buffer
	if json.Compact(&compact, body) != nil {
		return string(body)
	}
	return compact.String()
}

// recoverMiddleware returns a middleware that recovers from a panic in an
// operation, logs the value with the operation and answers 500 with the
// same {"error": ...} body as any other failure.
func (key ctxlog) recoverMiddleware(fallback *slog.Logger) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		defer func() {
			v := recover()
			if v == nil {
				return
			}
			logger, ok := ctx.Context().Value(key).(*slog.Logger)
			if !ok {
				logger = fallback
			}
			op := ctx.Operation()
			logger.LogAttrs(context.Background(), slog.LevelError, "panic occurred",
				slog.Any("recovered", v),
				slog.String("path", op.Path),
				slog.String("contact", ctx.Param("id")),
			)
			ctx.SetHeader("Content-Type", "application/json")
			ctx.SetStatus(http.StatusInternalServerError)
			_, _ = io.WriteString(ctx.BodyWriter(), `{"error":"unexpected error occurred"}`+"\n")
		}()
		next(ctx)
	}
}

// errorHandler returns a function that gets the [slog.Logger] from [context.Context] and logs the error.
func (key ctxlog) errorHandler(fallback *slog.Logger) func(context.Context, error) {
	return func(ctx context.Context, err error) {
		level := slog.LevelError
		attrs := []slog.Attr{slog.Any("err", err)}

		var statusErr huma.StatusError
		if errors.As(err, &statusErr) {
			switch statusErr.GetStatus() / 100 {
			case 5: //nolint: mnd // 5XX HTTP Status Codes
				level = slog.LevelError
			case 4: //nolint: mnd // 4XX HTTP Status Codes
				level = slog.LevelWarn
			case 3: //nolint: mnd // 3XX HTTP Status Codes
				level = slog.LevelInfo
			}
			attrs = append(attrs, slog.Int("status", statusErr.GetStatus()))
			if cause := errors.Unwrap(err); cause != nil {
				attrs = append(attrs, slog.Any("cause", cause))
			}
		}

		logger, ok := ctx.Value(key).(*slog.Logger)
		if !ok {
			logger = fallback
		}
		logger.LogAttrs(context.Background(), level, "error occurred", attrs...)
	}
}

// operationMetrics counts requests per operation and status, and rejected
// writes per phonebook outcome.
type operationMetrics struct {
	set       *metrics.Set
	buckets   []float64
	mu        sync.Mutex
	requests  map[operationStatus]requestMetrics
	conflicts *metrics.Counter
	invalid   *metrics.Counter
}

type operationStatus struct {
	id     string
	status int
}

type requestMetrics struct {
	total    *metrics.Counter
	duration *metrics.PrometheusHistogram
}

func newOperationMetrics(set *metrics.Set, service *phonebook.Service) *operationMetrics {
	if service != nil {
		set.NewGauge("phonebook_contacts", func() float64 {
			summary, err := service.Summary(context.Background())
			if err != nil {
				return 0
			}
			return float64(summary.Count)
		})
	}
	return &operationMetrics{
		set:       set,
		buckets:   metrics.ExponentialBuckets(1e-3, 5, 6), //nolint: mnd // 1ms to ~3s
		requests:  make(map[operationStatus]requestMetrics),
		conflicts: set.NewCounter(`phonebook_rejected_writes_total{reason="name_not_unique"}`),
		invalid:   set.NewCounter(`phonebook_rejected_writes_total{reason="invalid"}`),
	}
}

func (m *operationMetrics) request(op *huma.Operation, status int) requestMetrics {
	key := operationStatus{op.OperationID, status}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.requests[key]
	if !ok {
		labels := joinQuote("{method=", op.Method, ",path=", op.Path, ",status=", strconv.Itoa(status), "}")
		r = requestMetrics{
			total:    m.set.NewCounter("http_requests_total" + labels),
			duration: m.set.NewPrometheusHistogramExt("http_request_duration_seconds"+labels, m.buckets),
		}
		m.requests[key] = r
	}
	return r
}

func (m *operationMetrics) middleware(ctx huma.Context, next func(huma.Context)) {
	op, start := ctx.Operation(), time.Now()
	next(ctx)

	status := ctx.Status()
	r := m.request(op, status)
	r.total.Inc()
	r.duration.UpdateDuration(start)

	if op.Method == http.MethodPost || op.Method == http.MethodPut {
		switch status {
		case http.StatusConflict:
			m.conflicts.Inc()
		case http.StatusBadRequest:
			m.invalid.Inc()
		}
	}
}

// joinQuote is [strings.Join] with " as separator.
func joinQuote(elems ...string) string { return strings.Join(elems, `"`) }
