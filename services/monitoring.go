package services

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

const (
	MONITORING_SVC          = "monitoring_svc"
	SERVICE_NAME            = "brushy_api"
	DEFAULT_PROMETHEUS_PORT = 2112

	memoryMetricsInterval = 15 * time.Second
)

// Metrics receives domain events from the services. Services hold
// noopMetrics when monitoring is not registered, never nil.
type Metrics interface {
	RecordSession(session string, streakUpdated bool)
	RecordDayCounted()
	RecordPinCheck(valid bool)
	RecordSignup()
	RecordRateLimited(endpointType string)
}

type noopMetrics struct{}

func (noopMetrics) RecordSession(string, bool) {}
func (noopMetrics) RecordDayCounted()          {}
func (noopMetrics) RecordPinCheck(bool)        {}
func (noopMetrics) RecordSignup()              {}
func (noopMetrics) RecordRateLimited(string)   {}

// collectorSet holds every collector exported on /metrics.
type collectorSet struct {
	requests        *prometheus.CounterVec
	requestsFailed  *prometheus.CounterVec
	requestsActive  prometheus.Gauge
	requestDuration *prometheus.HistogramVec

	heapAlloc prometheus.Gauge
	heapSys   prometheus.Gauge
	gcRuns    prometheus.Counter

	sessions    *prometheus.CounterVec
	activities  *prometheus.CounterVec
	daysCounted prometheus.Counter
	pinChecks   *prometheus.CounterVec
	signups     prometheus.Counter
	rateLimited *prometheus.CounterVec
}

func newCollectorSet(reg prometheus.Registerer) *collectorSet {
	cs := &collectorSet{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		}, []string{"endpoint", "method", "status"}),
		requestsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_failed_total",
			Help: "HTTP requests answered with a 4xx or 5xx status",
		}, []string{"endpoint", "method"}),
		requestsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_active",
			Help: "HTTP requests currently in flight",
		}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"endpoint", "method", "status"}),

		heapAlloc: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "heap_alloc_bytes",
			Help: "Heap memory allocated in bytes",
		}),
		heapSys: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "heap_sys_bytes",
			Help: "Heap memory obtained from the system in bytes",
		}),
		gcRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gc_total",
			Help: "Completed garbage collection cycles",
		}),

		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brush_sessions_total",
			Help: "Brushing sessions recorded, by session type",
		}, []string{"session"}),
		activities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "activity_records_total",
			Help: "Activity records appended, by session type",
		}, []string{"session"}),
		daysCounted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "brush_days_counted_total",
			Help: "Overall activity calls that counted a new brushing day",
		}),
		pinChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "parent_pin_checks_total",
			Help: "Parent PIN checks, by result",
		}, []string{"result"}),
		signups: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signups_total",
			Help: "Accounts created",
		}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter, by endpoint type",
		}, []string{"endpoint_type"}),
	}

	reg.MustRegister(
		cs.requests, cs.requestsFailed, cs.requestsActive, cs.requestDuration,
		cs.heapAlloc, cs.heapSys, cs.gcRuns,
		cs.sessions, cs.activities, cs.daysCounted, cs.pinChecks, cs.signups, cs.rateLimited,
	)
	return cs
}

type MonitoringService struct {
	context.DefaultService

	port     int
	register *prometheus.Registry
	metrics  *collectorSet

	closed      chan struct{}
	server      *fiber.App
	lastGCCount uint32
}

// NewMonitoringService returns a service with its own registry, usable
// without the service container.
func NewMonitoringService() *MonitoringService {
	svc := &MonitoringService{port: DEFAULT_PROMETHEUS_PORT}
	svc.initRegistry()
	return svc
}

func (svc *MonitoringService) Id() string {
	return MONITORING_SVC
}

func (svc *MonitoringService) Configure(ctx *context.Context) error {
	svc.port = DEFAULT_PROMETHEUS_PORT
	if port, err := strconv.Atoi(os.Getenv("PROMETHEUS_PORT")); err == nil {
		svc.port = port
	}

	svc.initRegistry()
	return svc.DefaultService.Configure(ctx)
}

func (svc *MonitoringService) initRegistry() {
	svc.register = prometheus.NewRegistry()
	svc.register.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	svc.metrics = newCollectorSet(svc.register)
}

func (svc *MonitoringService) Start() error {
	svc.closed = make(chan struct{}, 1)

	go svc.sampleMemory()

	svc.server = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusInternalServerError).SendString("Internal Server Error")
		},
	})
	svc.server.Use(recover.New())
	svc.server.Get("/metrics", svc.metricsHandler)
	svc.server.Get("/health", svc.healthHandler)

	go func() {
		if err := svc.server.Listen(fmt.Sprintf(":%v", svc.port)); err != nil {
			log.Error().Err(err).Msg("Prometheus metrics server stopped")
		}
	}()

	log.Info().Int("port", svc.port).Msg("Prometheus metrics server started")
	return nil
}

func (svc *MonitoringService) Shutdown() {
	if svc.closed != nil {
		svc.closed <- struct{}{}
	}
	if svc.server != nil {
		_ = svc.server.Shutdown()
	}
}

func (svc *MonitoringService) metricsHandler(c *fiber.Ctx) error {
	handler := promhttp.HandlerFor(svc.register, promhttp.HandlerOpts{})
	return adaptor.HTTPHandler(handler)(c)
}

func (svc *MonitoringService) healthHandler(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":    "healthy",
		"service":   SERVICE_NAME,
		"timestamp": time.Now().Unix(),
	})
}

func (svc *MonitoringService) sampleMemory() {
	ticker := time.NewTicker(memoryMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			svc.recordMemStats()
		case <-svc.closed:
			log.Info().Msg("Memory metrics sampler stopped")
			return
		}
	}
}

func (svc *MonitoringService) recordMemStats() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	svc.metrics.heapAlloc.Set(float64(m.Alloc))
	svc.metrics.heapSys.Set(float64(m.Sys))

	if m.NumGC > svc.lastGCCount {
		svc.metrics.gcRuns.Add(float64(m.NumGC - svc.lastGCCount))
		svc.lastGCCount = m.NumGC
	}
}

func (svc *MonitoringService) RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	svc.metrics.requests.WithLabelValues(endpoint, method, status).Inc()
	svc.metrics.requestDuration.WithLabelValues(endpoint, method, status).Observe(duration.Seconds())

	if statusCode >= fiber.StatusBadRequest {
		svc.metrics.requestsFailed.WithLabelValues(endpoint, method).Inc()
	}
}

func (svc *MonitoringService) RecordSession(session string, streakUpdated bool) {
	svc.metrics.sessions.WithLabelValues(session).Inc()
	if streakUpdated {
		svc.metrics.activities.WithLabelValues(session).Inc()
	}
}

func (svc *MonitoringService) RecordDayCounted() {
	svc.metrics.daysCounted.Inc()
}

func (svc *MonitoringService) RecordPinCheck(valid bool) {
	svc.metrics.pinChecks.WithLabelValues(strconv.FormatBool(valid)).Inc()
}

func (svc *MonitoringService) RecordSignup() {
	svc.metrics.signups.Inc()
}

func (svc *MonitoringService) RecordRateLimited(endpointType string) {
	svc.metrics.rateLimited.WithLabelValues(endpointType).Inc()
}

// MonitoringMiddleware records count, latency and status of every request
// by route pattern.
func MonitoringMiddleware(monitoringSvc *MonitoringService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method := c.Method()

		monitoringSvc.metrics.requestsActive.Inc()
		defer monitoringSvc.metrics.requestsActive.Dec()

		err := c.Next()

		// the matched route is only known after Next
		endpoint := c.Route().Path

		status := c.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			if code := errorStatus(err); code != 0 {
				status = code
			}
		}

		monitoringSvc.RecordRequest(method, endpoint, status, time.Since(start))
		return err
	}
}
