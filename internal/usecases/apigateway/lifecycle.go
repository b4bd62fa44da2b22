package apigateway

import (
	"context"
	"errors"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"apigw-resource/internal/domain/apigateway"
	"apigw-resource/internal/domain/lifecycle"
	"apigw-resource/internal/ports"
	"apigw-resource/pkg/metrics"
)

// LifecycleController dispatches one lifecycle command, sequences the
// locator, reconcilers, change detector and importer, and reports the result.
type LifecycleController struct {
	fetcher  ports.ArtifactFetcher
	locator  ports.APILocator
	importer ports.SchemaImporter
	sink     ports.ReportSink
	stages   *StageReconciler
	apis     *APIReconciler
	detector *ChangeDetector
}

var _ ports.LifecycleUseCase = (*LifecycleController)(nil)

func NewLifecycleController(
	repo ports.APIGatewayRepository,
	locator ports.APILocator,
	fetcher ports.ArtifactFetcher,
	importer ports.SchemaImporter,
	sink ports.ReportSink,
) *LifecycleController {
	return &LifecycleController{
		fetcher:  fetcher,
		locator:  locator,
		importer: importer,
		sink:     sink,
		stages:   NewStageReconciler(repo),
		apis:     NewAPIReconciler(repo),
		detector: NewChangeDetector(fetcher),
	}
}

// Handle reconciles req and sends exactly one report to the sink. The report
// is returned whether or not delivery succeeded.
func (c *LifecycleController) Handle(ctx context.Context, req *lifecycle.Request) *lifecycle.Report {
	logger := log.FromContext(ctx).WithValues(
		"command", req.Command,
		"requestID", req.RequestID,
		"logicalResourceID", req.LogicalResourceID,
	)
	ctx = log.IntoContext(ctx, logger)

	logger.Info("Handling lifecycle request", "physicalResourceID", req.PhysicalResourceID)
	recorder := metrics.NewReconcileMetricsRecorder(string(req.Command))

	var report *lifecycle.Report
	outcome, err := c.Reconcile(ctx, req)
	if err != nil {
		kind := apigateway.KindOf(err)
		recorder.RecordError(kind.String())
		logger.Error(err, "Lifecycle reconciliation failed", "errorType", kind.String())
		if apigateway.IsImporter(err) {
			logger.Info("Importer output", "output", importerOutput(err))
		}
		report = lifecycle.FailedReport(req, err)
	} else {
		recorder.RecordSuccess()
		report = lifecycle.SuccessReport(req, outcome.ResultingAPI)
		logger.Info("Lifecycle reconciliation succeeded", "physicalResourceID", report.PhysicalResourceID)
	}

	if err := c.sink.Send(ctx, report); err != nil {
		logger.Error(err, "Failed to send lifecycle report", "status", report.Status)
	}
	return report
}

// Reconcile converges remote state for req without reporting.
func (c *LifecycleController) Reconcile(ctx context.Context, req *lifecycle.Request) (*apigateway.Outcome, error) {
	logger := log.FromContext(ctx)

	if err := req.Validate(); err != nil {
		return nil, apigateway.NewValidationError("validate request", err)
	}

	artifact, err := c.fetcher.Fetch(ctx, req.Current.Location, req.Current.Variables)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := artifact.Cleanup(); err != nil {
			logger.Error(err, "Failed to clean up definition", "dir", artifact.Dir)
		}
	}()

	existing, err := c.locator.Find(ctx, artifact.Title)
	if err != nil {
		return nil, err
	}
	logger.Info("Resolved declared API", "name", artifact.Title, "exists", existing != nil)

	var api *apigateway.RemoteAPI
	switch req.Command {
	case lifecycle.CommandDelete:
		api, err = c.reconcileDelete(ctx, req.Current.StageName, existing)
	case lifecycle.CommandCreate, lifecycle.CommandUpdate:
		api, err = c.reconcileImport(ctx, req, artifact, existing)
	default:
		err = apigateway.NewValidationError("dispatch", fmt.Errorf("%w: %q", lifecycle.ErrInvalidCommand, req.Command))
	}
	if err != nil {
		return nil, err
	}

	return &apigateway.Outcome{ResultingAPI: api, Success: true}, nil
}

func (c *LifecycleController) reconcileDelete(ctx context.Context, stage string, existing *apigateway.RemoteAPI) (*apigateway.RemoteAPI, error) {
	if existing == nil {
		log.FromContext(ctx).Info("Nothing to delete")
		return nil, nil
	}

	if stage != "" {
		if _, err := c.stages.RemoveStage(ctx, existing.ID, stage); err != nil {
			return nil, err
		}
	}

	return c.apis.ReconcileDeletion(ctx, existing)
}

func (c *LifecycleController) reconcileImport(
	ctx context.Context,
	req *lifecycle.Request,
	artifact *lifecycle.Artifact,
	existing *apigateway.RemoteAPI,
) (*apigateway.RemoteAPI, error) {
	logger := log.FromContext(ctx)

	decision, err := c.detector.ShouldUpdate(ctx, req.Current, req.Previous, existing)
	if err != nil {
		return nil, err
	}
	logger.Info("Change check", "decision", decision.String())

	if decision == lifecycle.DecisionSkip {
		return existing, nil
	}

	stage := req.Current.StageName
	if existing == nil {
		return c.importer.Create(ctx, artifact, stage)
	}
	return c.importer.Update(ctx, existing, artifact, stage)
}

func importerOutput(err error) string {
	var e *apigateway.Error
	if errors.As(err, &e) {
		return e.Output
	}
	return ""
}
