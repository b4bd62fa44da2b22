// Package cfn connects the lifecycle controller to CloudFormation custom
// resource events and response URLs.
package cfn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"apigw-resource/internal/domain/lifecycle"
	"apigw-resource/internal/ports"
	"apigw-resource/pkg/mapper"
	"apigw-resource/pkg/metrics"
)

// DefaultTimeout bounds one report upload.
const DefaultTimeout = 30 * time.Second

// HTTPClient is satisfied by *http.Client.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ResponseSink uploads reports to the presigned response URL carried by
// the originating event.
type ResponseSink struct {
	client HTTPClient
}

var _ ports.ReportSink = (*ResponseSink)(nil)

func NewResponseSink(client HTTPClient) *ResponseSink {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &ResponseSink{client: client}
}

// Send PUTs the report. A report without a response URL is logged and
// dropped.
func (s *ResponseSink) Send(ctx context.Context, report *lifecycle.Report) error {
	logger := log.FromContext(ctx).WithValues("status", report.Status, "physicalResourceID", report.PhysicalResourceID)

	if report.ResponseURL == "" {
		logger.Info("No response URL, report not sent")
		metrics.RecordReport(string(report.Status), metrics.ResultSkipped)
		return nil
	}

	body, err := json.Marshal(mapper.ReportToResponse(report))
	if err != nil {
		metrics.RecordReport(string(report.Status), metrics.ResultError)
		return fmt.Errorf("failed to encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, report.ResponseURL, bytes.NewReader(body))
	if err != nil {
		metrics.RecordReport(string(report.Status), metrics.ResultError)
		return fmt.Errorf("failed to build report request: %w", err)
	}
	// Presigned URLs are signed without a content type.
	req.Header.Set("Content-Type", "")

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.RecordReport(string(report.Status), metrics.ResultError)
		return fmt.Errorf("failed to send report: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordReport(string(report.Status), metrics.ResultError)
		return fmt.Errorf("failed to send report: unexpected status %d", resp.StatusCode)
	}

	logger.Info("Report sent", "statusCode", resp.StatusCode)
	metrics.RecordReport(string(report.Status), metrics.ResultSent)
	return nil
}
