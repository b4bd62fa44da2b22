// Package ports defines the boundaries between the reconciliation use cases
// and the adapters that talk to AWS, the importer and the orchestrator.
package ports

import (
	"context"

	"apigw-resource/internal/domain/apigateway"
	"apigw-resource/internal/domain/lifecycle"
)

// APIGatewayRepository defines the remote API Gateway operations the
// reconciler needs. Not-found failures are returned as
// apigateway.KindNotFound errors.
type APIGatewayRepository interface {
	// ListAPIs returns one page of the API listing starting at position.
	ListAPIs(ctx context.Context, position string, limit int32) (*apigateway.APIPage, error)
	ListStages(ctx context.Context, apiID string) ([]apigateway.Stage, error)
	DeleteStage(ctx context.Context, apiID, stageName string) error
	DeleteAPI(ctx context.Context, apiID string) error
}

// APILocator finds a remote API by name. It never mutates remote state.
type APILocator interface {
	Find(ctx context.Context, name string) (*apigateway.RemoteAPI, error)
}

// LifecycleUseCase handles one lifecycle invocation end to end and returns
// the report it sent.
type LifecycleUseCase interface {
	Handle(ctx context.Context, req *lifecycle.Request) *lifecycle.Report
}
