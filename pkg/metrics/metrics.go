// Package metrics provides Prometheus metrics for the API Gateway lifecycle resource.
//
// This package exposes metrics about:
// - Lifecycle reconciliations per command and result
// - AWS API call performance and errors
// - Change detection decisions
// - External importer runs
// - Reports delivered to the orchestrator
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds every collector of this package. It is served on /metrics.
var Registry = prometheus.NewRegistry()

var (
	// ============================================
	// Reconciliation Metrics
	// ============================================

	// ReconcileTotal tracks lifecycle invocations per command and result.
	// Labels: command (Create, Update, Delete), result (success, error)
	ReconcileTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apigw_resource_reconcile_total",
			Help: "Total number of lifecycle reconciliations per command and result",
		},
		[]string{"command", "result"},
	)

	// ReconcileDuration tracks the duration of lifecycle invocations in seconds.
	// Buckets are wider than the defaults since imports shell out to the JVM.
	ReconcileDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "apigw_resource_reconcile_duration_seconds",
			Help:    "Duration of lifecycle reconciliations in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"command"},
	)

	// ReconcileErrors tracks failed reconciliations by error kind.
	// Labels: command, error_type (validation, not_found, remote_service, importer, unknown)
	ReconcileErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apigw_resource_reconcile_errors_total",
			Help: "Total number of reconciliation errors by type",
		},
		[]string{"command", "error_type"},
	)

	// ============================================
	// AWS API Metrics
	// ============================================

	// AWSAPICallsTotal tracks the total number of AWS API calls.
	// Labels: service (APIGateway, S3), operation (GetRestApis, HeadObject, etc.), result (success, error)
	AWSAPICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apigw_resource_aws_api_calls_total",
			Help: "Total number of AWS API calls by service, operation, and result",
		},
		[]string{"service", "operation", "result"},
	)

	// AWSAPICallDuration tracks the duration of AWS API calls in seconds.
	AWSAPICallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "apigw_resource_aws_api_call_duration_seconds",
			Help:    "Duration of AWS API calls in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "operation"},
	)

	// AWSAPIErrors tracks AWS API errors by error code.
	// Labels: service, operation, error_code (NotFoundException, TooManyRequestsException, etc.)
	AWSAPIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apigw_resource_aws_api_errors_total",
			Help: "Total number of AWS API errors by service, operation, and error code",
		},
		[]string{"service", "operation", "error_code"},
	)

	// AWSAPIThrottles tracks throttled AWS API calls.
	AWSAPIThrottles = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apigw_resource_aws_api_throttles_total",
			Help: "Total number of AWS API throttling events (rate limit exceeded)",
		},
		[]string{"service", "operation"},
	)

	// ============================================
	// Change Detection Metrics
	// ============================================

	// ChangeDecisions tracks the change detector's verdicts.
	// Labels: decision (skip, update), reason (no_existing_api, properties_changed, content_changed, content_identical, no_previous_location)
	ChangeDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apigw_resource_change_decisions_total",
			Help: "Total number of change detection decisions by verdict and reason",
		},
		[]string{"decision", "reason"},
	)

	// ============================================
	// Importer Metrics
	// ============================================

	// ImporterRuns tracks importer invocations.
	// Labels: operation (create, update), result (success, error)
	ImporterRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apigw_resource_importer_runs_total",
			Help: "Total number of external importer invocations",
		},
		[]string{"operation", "result"},
	)

	// ImporterDuration tracks importer process wall time in seconds.
	ImporterDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "apigw_resource_importer_duration_seconds",
			Help:    "Duration of external importer invocations in seconds",
			Buckets: []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300},
		},
		[]string{"operation"},
	)

	// ============================================
	// Report Metrics
	// ============================================

	// ReportsTotal tracks reports delivered to the orchestrator.
	// Labels: status (SUCCESS, FAILED), result (sent, error, skipped)
	ReportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "apigw_resource_reports_total",
			Help: "Total number of lifecycle reports by status and delivery result",
		},
		[]string{"status", "result"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Register reconciliation metrics
	Registry.MustRegister(
		ReconcileTotal,
		ReconcileDuration,
		ReconcileErrors,
	)

	// Register AWS API metrics
	Registry.MustRegister(
		AWSAPICallsTotal,
		AWSAPICallDuration,
		AWSAPIErrors,
		AWSAPIThrottles,
	)

	Registry.MustRegister(
		ChangeDecisions,
		ImporterRuns,
		ImporterDuration,
		ReportsTotal,
	)
}

// Common AWS service names for standardized service labels
const (
	ServiceAPIGateway = "APIGateway"
	ServiceS3         = "S3"
)

// Change decision reasons
const (
	ReasonNoExistingAPI      = "no_existing_api"
	ReasonPropertiesChanged  = "properties_changed"
	ReasonNoPreviousLocation = "no_previous_location"
	ReasonSameLocation       = "same_location"
	ReasonContentChanged     = "content_changed"
	ReasonContentIdentical   = "content_identical"
)

// Common results
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultSent    = "sent"
	ResultSkipped = "skipped"
)
