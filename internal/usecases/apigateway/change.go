package apigateway

import (
	"context"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"golang.org/x/sync/errgroup"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"apigw-resource/internal/domain/apigateway"
	"apigw-resource/internal/domain/lifecycle"
	"apigw-resource/internal/ports"
	"apigw-resource/pkg/metrics"
)

// ChangeDetector decides whether a Create or Update needs the importer.
type ChangeDetector struct {
	fetcher ports.ArtifactFetcher
}

func NewChangeDetector(fetcher ports.ArtifactFetcher) *ChangeDetector {
	return &ChangeDetector{fetcher: fetcher}
}

// ShouldUpdate compares the current and previous definitions. Content
// identities are only compared when the storage location moved; a
// re-declared location may hold re-uploaded content, so it always updates.
// Documents that differ in whitespace or ordering still count as changed.
func (d *ChangeDetector) ShouldUpdate(
	ctx context.Context,
	current, previous *lifecycle.Definition,
	existing *apigateway.RemoteAPI,
) (lifecycle.Decision, error) {
	logger := log.FromContext(ctx)

	if existing == nil {
		return decide(lifecycle.DecisionUpdate, metrics.ReasonNoExistingAPI), nil
	}

	if previous == nil {
		previous = &lifecycle.Definition{}
	}

	// The importer is the only component that applies stage and variable
	// changes, so any of them forces a re-import.
	if current.StageName != previous.StageName ||
		!cmp.Equal(current.Variables, previous.Variables, cmpopts.EquateEmpty()) {
		return decide(lifecycle.DecisionUpdate, metrics.ReasonPropertiesChanged), nil
	}

	if previous.Location.Validate() != nil {
		return decide(lifecycle.DecisionUpdate, metrics.ReasonNoPreviousLocation), nil
	}

	if cmp.Equal(current.Location, previous.Location) {
		return decide(lifecycle.DecisionUpdate, metrics.ReasonSameLocation), nil
	}

	tags, errs := d.contentIdentities(ctx, current.Location, previous.Location)
	if errs[0] != nil {
		return lifecycle.DecisionUpdate, errs[0]
	}
	if errs[1] != nil {
		if apigateway.IsNotFound(errs[1]) {
			logger.Info("Previous definition no longer stored", "location", previous.Location.String())
			return decide(lifecycle.DecisionUpdate, metrics.ReasonNoPreviousLocation), nil
		}
		return lifecycle.DecisionUpdate, errs[1]
	}

	distinct := map[string]struct{}{}
	for _, tag := range tags {
		distinct[tag] = struct{}{}
	}

	logger.V(1).Info("Compared content identities", "current", tags[0], "previous", tags[1])
	if len(distinct) > 1 {
		return decide(lifecycle.DecisionUpdate, metrics.ReasonContentChanged), nil
	}
	return decide(lifecycle.DecisionSkip, metrics.ReasonContentIdentical), nil
}

// contentIdentities fetches the identity of every location concurrently.
// Errors are kept per location so the caller can tell them apart.
func (d *ChangeDetector) contentIdentities(ctx context.Context, locs ...lifecycle.StorageLocation) ([]string, []error) {
	tags := make([]string, len(locs))
	errs := make([]error, len(locs))

	var g errgroup.Group
	for i, loc := range locs {
		i, loc := i, loc
		g.Go(func() error {
			tags[i], errs[i] = d.fetcher.ContentIdentity(ctx, loc)
			return nil
		})
	}
	_ = g.Wait()

	return tags, errs
}

func decide(decision lifecycle.Decision, reason string) lifecycle.Decision {
	metrics.RecordChangeDecision(decision.String(), reason)
	return decision
}
