package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldservice_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fieldservice_register_total",
			Help: "Total number of profile registrations",
		},
	)

	// Work-order transition counter
	TransitionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldservice_workorder_transitions_total",
			Help: "Total number of work-order status transition attempts",
		},
		[]string{"to_status", "result"}, // result is "applied" or "rejected"
	)

	// Work-order operation counter
	WorkOrderOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldservice_workorder_operations_total",
			Help: "Total number of work-order operations",
		},
		[]string{"operation"}, // operation can be "create", "assign", "report", "cancel", etc.
	)

	// Invoice operation counter
	InvoiceOperationCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldservice_invoice_operations_total",
			Help: "Total number of invoice operations",
		},
		[]string{"operation"}, // operation can be "issue", "render", "export", etc.
	)

	// Webhook event counter by event type and outcome
	WebhookEventCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldservice_webhook_events_total",
			Help: "Total number of payment webhook events by type and outcome",
		},
		[]string{"type", "outcome"}, // outcome can be "applied", "duplicate", "ignored", "error"
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldservice_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // type can be "login_failure", "invalid_token", "db_error" etc.
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fieldservice_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fieldservice_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	// Active tokens
	ActiveTokensGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "fieldservice_active_tokens",
			Help: "Number of currently active authentication tokens",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fieldservice_info",
			Help: "Information about the field-service API",
		},
		[]string{"version"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(TransitionCounter)
	prometheus.MustRegister(WorkOrderOperationCounter)
	prometheus.MustRegister(InvoiceOperationCounter)
	prometheus.MustRegister(WebhookEventCounter)
	prometheus.MustRegister(AuthErrorCounter)

	// Register histograms
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(ActiveTokensGauge)
	prometheus.MustRegister(InfoGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// RecordTransition records a work-order transition attempt
func RecordTransition(toStatus, result string) {
	TransitionCounter.With(prometheus.Labels{"to_status": toStatus, "result": result}).Inc()
}

// RecordWorkOrderOperation increments the work-order operation counter
func RecordWorkOrderOperation(operation string) {
	WorkOrderOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordInvoiceOperation increments the invoice operation counter
func RecordInvoiceOperation(operation string) {
	InvoiceOperationCounter.With(prometheus.Labels{"operation": operation}).Inc()
}

// RecordWebhookEvent increments the webhook event counter
func RecordWebhookEvent(eventType, outcome string) {
	WebhookEventCounter.With(prometheus.Labels{"type": eventType, "outcome": outcome}).Inc()
}

// RecordAuthError increments the auth error counter
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// IncreaseActiveTokens increments the active token gauge
func IncreaseActiveTokens() {
	ActiveTokensGauge.Inc()
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			RequestDuration.With(prometheus.Labels{
				"endpoint": c.Path(),
				"method":   c.Request().Method,
				"status":   status,
			}).Observe(duration)

			return err
		}
	}
}
