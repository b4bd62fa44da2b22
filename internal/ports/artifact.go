package ports

import (
	"context"

	"apigw-resource/internal/domain/lifecycle"
)

// ArtifactFetcher retrieves declared definitions from the artifact store.
type ArtifactFetcher interface {
	// Fetch downloads the definition, substitutes variables and materializes
	// it on local disk. Callers own the returned artifact's Cleanup.
	Fetch(ctx context.Context, loc lifecycle.StorageLocation, variables map[string]string) (*lifecycle.Artifact, error)

	// ContentIdentity returns the entity tag of the stored object without
	// transferring its content.
	ContentIdentity(ctx context.Context, loc lifecycle.StorageLocation) (string, error)
}
