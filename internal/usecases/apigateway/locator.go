package apigateway

import (
	"context"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"apigw-resource/internal/domain/apigateway"
	"apigw-resource/internal/ports"
)

// Locator searches the remote API listing for an API by exact name.
// When several APIs share a name the first one in listing order wins.
type Locator struct {
	repo     ports.APIGatewayRepository
	pageSize int32
}

var _ ports.APILocator = (*Locator)(nil)

func NewLocator(repo ports.APIGatewayRepository) *Locator {
	return &Locator{repo: repo, pageSize: apigateway.DefaultPageSize}
}

// Find returns the API named name, or nil when the listing is exhausted
// without a match. Service errors are returned unmodified.
func (l *Locator) Find(ctx context.Context, name string) (*apigateway.RemoteAPI, error) {
	logger := log.FromContext(ctx)

	position := ""
	pages := 0
	for {
		page, err := l.repo.ListAPIs(ctx, position, l.pageSize)
		if err != nil {
			return nil, err
		}
		pages++

		for i := range page.Items {
			if page.Items[i].Name == name {
				logger.V(1).Info("Found existing API", "name", name, "apiID", page.Items[i].ID, "pages", pages)
				return page.Items[i].Clone(), nil
			}
		}

		// A short page ends the listing. A full page without a cursor would
		// restart from the beginning, so it ends the listing as well.
		if len(page.Items) < int(l.pageSize) || page.Position == "" {
			logger.V(1).Info("No existing API", "name", name, "pages", pages)
			return nil, nil
		}
		position = page.Position
	}
}
