package ports

import (
	"context"

	"apigw-resource/internal/domain/apigateway"
	"apigw-resource/internal/domain/lifecycle"
)

// SchemaImporter performs the actual creation or replacement of a remote API
// from a definition document.
type SchemaImporter interface {
	Create(ctx context.Context, artifact *lifecycle.Artifact, stage string) (*apigateway.RemoteAPI, error)
	Update(ctx context.Context, existing *apigateway.RemoteAPI, artifact *lifecycle.Artifact, stage string) (*apigateway.RemoteAPI, error)
}
