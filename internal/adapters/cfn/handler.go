package cfn

import (
	"context"

	"github.com/aws/aws-lambda-go/cfn"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"apigw-resource/internal/domain/apigateway"
	"apigw-resource/internal/domain/lifecycle"
	"apigw-resource/internal/ports"
	"apigw-resource/pkg/mapper"
	"apigw-resource/pkg/metrics"
)

// Handler turns custom resource events into lifecycle requests.
type Handler struct {
	controller ports.LifecycleUseCase
	sink       ports.ReportSink
}

// NewHandler creates a handler. sink receives the FAILED report for events
// that cannot be mapped; mapped events report through the controller.
func NewHandler(controller ports.LifecycleUseCase, sink ports.ReportSink) *Handler {
	return &Handler{controller: controller, sink: sink}
}

// HandleEvent is the Lambda entry point. It returns nil once a report has
// been produced so the runtime does not retry a reported event.
func (h *Handler) HandleEvent(ctx context.Context, event cfn.Event) error {
	h.Handle(ctx, &event)
	return nil
}

// Handle processes one event and returns the report that was sent.
func (h *Handler) Handle(ctx context.Context, event *cfn.Event) *lifecycle.Report {
	logger := log.FromContext(ctx).WithValues("requestID", event.RequestID, "requestType", event.RequestType)
	ctx = log.IntoContext(ctx, logger)
	logger.Info("Received lifecycle event", "resourceType", event.ResourceType, "logicalResourceID", event.LogicalResourceID)

	req, err := mapper.EventToRequest(event)
	if err != nil {
		err = apigateway.NewValidationError("map event", err)
		logger.Error(err, "Invalid lifecycle event")
		metrics.NewReconcileMetricsRecorder(string(event.RequestType)).RecordError(apigateway.KindValidation.String())

		report := lifecycle.FailedReport(req, err)
		if sendErr := h.sink.Send(ctx, report); sendErr != nil {
			logger.Error(sendErr, "Failed to send lifecycle report", "status", report.Status)
		}
		return report
	}

	return h.controller.Handle(ctx, req)
}
