package ports

import (
	"context"

	"apigw-resource/internal/domain/lifecycle"
)

// ReportSink delivers the final lifecycle report to the orchestrator.
type ReportSink interface {
	Send(ctx context.Context, report *lifecycle.Report) error
}
