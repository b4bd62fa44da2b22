// Package metrics provides helpers for recording metrics in a consistent way.
package metrics

import (
	"errors"
	"time"

	"github.com/aws/smithy-go"
)

// ============================================
// Reconciliation Metrics Recorder
// ============================================

// ReconcileMetricsRecorder records one lifecycle invocation.
// Usage:
//
//	recorder := metrics.NewReconcileMetricsRecorder("Delete")
//	defer func() {
//	  if err != nil {
//	    recorder.RecordError(kind)
//	  } else {
//	    recorder.RecordSuccess()
//	  }
//	}()
type ReconcileMetricsRecorder struct {
	command   string
	startTime time.Time
}

// NewReconcileMetricsRecorder starts timing an invocation of command.
func NewReconcileMetricsRecorder(command string) *ReconcileMetricsRecorder {
	return &ReconcileMetricsRecorder{
		command:   command,
		startTime: time.Now(),
	}
}

// RecordSuccess records a successful reconciliation.
func (r *ReconcileMetricsRecorder) RecordSuccess() {
	duration := time.Since(r.startTime).Seconds()

	ReconcileTotal.WithLabelValues(r.command, ResultSuccess).Inc()
	ReconcileDuration.WithLabelValues(r.command).Observe(duration)
}

// RecordError records a failed reconciliation and its error type.
func (r *ReconcileMetricsRecorder) RecordError(errorType string) {
	duration := time.Since(r.startTime).Seconds()

	ReconcileTotal.WithLabelValues(r.command, ResultError).Inc()
	ReconcileDuration.WithLabelValues(r.command).Observe(duration)
	ReconcileErrors.WithLabelValues(r.command, errorType).Inc()
}

// ============================================
// AWS API Metrics Recorder
// ============================================

// AWSAPIMetricsRecorder records AWS API call metrics.
// Usage:
//
//	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceAPIGateway, "GetRestApis")
//	output, err := r.client.GetRestApis(ctx, input)
//	recorder.Record(err)
type AWSAPIMetricsRecorder struct {
	service   string
	operation string
	startTime time.Time
}

// NewAWSAPIMetricsRecorder starts timing an AWS API call.
func NewAWSAPIMetricsRecorder(service, operation string) *AWSAPIMetricsRecorder {
	return &AWSAPIMetricsRecorder{
		service:   service,
		operation: operation,
		startTime: time.Now(),
	}
}

// Record records the call as a success when err is nil and as an error otherwise.
func (a *AWSAPIMetricsRecorder) Record(err error) {
	if err != nil {
		a.RecordError(err)
		return
	}
	a.RecordSuccess()
}

// RecordSuccess records a successful AWS API call.
func (a *AWSAPIMetricsRecorder) RecordSuccess() {
	duration := time.Since(a.startTime).Seconds()

	AWSAPICallsTotal.WithLabelValues(a.service, a.operation, ResultSuccess).Inc()
	AWSAPICallDuration.WithLabelValues(a.service, a.operation).Observe(duration)
}

// RecordError records a failed AWS API call with its AWS error code.
func (a *AWSAPIMetricsRecorder) RecordError(err error) {
	duration := time.Since(a.startTime).Seconds()

	errorCode := ExtractAWSErrorCode(err)

	AWSAPICallsTotal.WithLabelValues(a.service, a.operation, ResultError).Inc()
	AWSAPICallDuration.WithLabelValues(a.service, a.operation).Observe(duration)
	AWSAPIErrors.WithLabelValues(a.service, a.operation, errorCode).Inc()

	if isThrottlingError(errorCode) {
		AWSAPIThrottles.WithLabelValues(a.service, a.operation).Inc()
	}
}

// ExtractAWSErrorCode returns the AWS error code carried by err, or "Unknown".
func ExtractAWSErrorCode(err error) string {
	if err == nil {
		return "Unknown"
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}

	return "Unknown"
}

func isThrottlingError(errorCode string) bool {
	switch errorCode {
	case "Throttling",
		"ThrottlingException",
		"RequestLimitExceeded",
		"TooManyRequestsException",
		"SlowDown":
		return true
	}
	return false
}

// ============================================
// Importer Metrics Recorder
// ============================================

// ImporterMetricsRecorder records one external importer run.
type ImporterMetricsRecorder struct {
	operation string
	startTime time.Time
}

// NewImporterMetricsRecorder starts timing an importer run.
func NewImporterMetricsRecorder(operation string) *ImporterMetricsRecorder {
	return &ImporterMetricsRecorder{
		operation: operation,
		startTime: time.Now(),
	}
}

// Record records the run outcome.
func (i *ImporterMetricsRecorder) Record(err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	ImporterRuns.WithLabelValues(i.operation, result).Inc()
	ImporterDuration.WithLabelValues(i.operation).Observe(time.Since(i.startTime).Seconds())
}

// ============================================
// Helpers
// ============================================

// RecordChangeDecision records a change detector verdict.
func RecordChangeDecision(decision, reason string) {
	ChangeDecisions.WithLabelValues(decision, reason).Inc()
}

// RecordReport records a report delivery attempt.
func RecordReport(status, result string) {
	ReportsTotal.WithLabelValues(status, result).Inc()
}
