package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/asakaida/terastore/internal/entities"
	"github.com/asakaida/terastore/internal/infrastructure/logger"
	"github.com/asakaida/terastore/internal/infrastructure/metrics"
	"github.com/asakaida/terastore/internal/services"
	"github.com/asakaida/terastore/internal/services/filter"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"go.uber.org/zap"
)

// Filterer evaluates attribute filters
type Filterer interface {
	Filter(ctx context.Context, predicates []entities.Predicate, columns []string) (*filter.Result, error)
}

// Pinger reports whether the backing store is reachable
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// Services bundles what the HTTP API serves
type Services struct {
	Devices    services.DeviceServiceInterface
	Pulses     services.PulseServiceInterface
	Attributes services.AttributeServiceInterface
	Filter     Filterer
	Health     Pinger
}

// Router is the HTTP API
type Router struct {
	chi.Router

	api *api
	svc Services
}

// NewRouter creates the HTTP API. collector and exporter may be nil.
func NewRouter(log *zap.Logger, svc Services, collector *metrics.Collector, exporter *metrics.PrometheusExporter) *Router {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Router{
		api: &api{log: log},
		svc: svc,
	}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(log),
		middleware.Recoverer,
	)
	if collector != nil {
		r.Use(metrics.HTTPMiddleware(collector, exporter))
	}

	r.Get("/healthz", h.handleHealth)

	r.Route("/devices", func(r chi.Router) {
		r.Post("/", h.handleCreateDevice)
		r.Get("/", h.handleListDevices)
		r.Get("/{deviceID}", h.handleGetDevice)
	})

	r.Route("/pulses", func(r chi.Router) {
		r.Get("/", h.handleListPulses)
		r.Post("/create", h.handleCreatePulses)
		r.Post("/get", h.handleGetPulses)
		r.Put("/attrs", h.handleWriteBulk)

		r.Route("/{pulseID}", func(r chi.Router) {
			r.Get("/", h.handleGetPulse)
			r.Get("/annotated", h.handleGetAnnotatedPulse)
			r.Get("/attrs", h.handleGetPulseAttributes)
			r.Put("/attrs", h.handleWriteOne)
		})
	})

	r.Route("/attrs", func(r chi.Router) {
		r.Get("/keys", h.handleListKeys)
		r.Get("/{key}/values", h.handleValuesForKey)
		r.Post("/filter", h.handleFilter)
	})

	h.Router = r
	return h
}

// requestLogger logs every request and puts a request scoped logger into the context
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			reqLog := log.With(zap.String("request_id", middleware.GetReqID(r.Context())))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func(start time.Time) {
				reqLog.Debug("request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Duration("took", time.Since(start)))
			}(time.Now())

			next.ServeHTTP(ww, r.WithContext(logger.NewContextWithLogger(r.Context(), reqLog)))
		}
		return http.HandlerFunc(fn)
	}
}

func (h *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.svc.Health != nil {
		if err := h.svc.Health.HealthCheck(r.Context()); err != nil {
			logger.FromContext(r.Context(), h.api.log).Warn("health check failed", zap.Error(err))
			h.api.respond(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	h.api.respond(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
