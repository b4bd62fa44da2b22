package apigateway

import (
	"context"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"apigw-resource/internal/domain/apigateway"
	"apigw-resource/internal/ports"
)

// StageReconciler removes single stages idempotently.
type StageReconciler struct {
	repo ports.APIGatewayRepository
}

func NewStageReconciler(repo ports.APIGatewayRepository) *StageReconciler {
	return &StageReconciler{repo: repo}
}

// RemoveStage deletes stageName from the API. A stage that is already absent
// counts as removed.
func (r *StageReconciler) RemoveStage(ctx context.Context, apiID, stageName string) (string, error) {
	logger := log.FromContext(ctx).WithValues("apiID", apiID, "stage", stageName)

	if err := r.repo.DeleteStage(ctx, apiID, stageName); err != nil {
		if apigateway.IsNotFound(err) {
			logger.Info("Stage already absent")
			return apiID, nil
		}
		return "", err
	}

	logger.Info("Stage removed")
	return apiID, nil
}

// APIReconciler deletes APIs once they no longer have any stage.
type APIReconciler struct {
	repo ports.APIGatewayRepository
}

func NewAPIReconciler(repo ports.APIGatewayRepository) *APIReconciler {
	return &APIReconciler{repo: repo}
}

// ReconcileDeletion deletes api when it has no remaining stages and returns it
// either way.
func (r *APIReconciler) ReconcileDeletion(ctx context.Context, api *apigateway.RemoteAPI) (*apigateway.RemoteAPI, error) {
	logger := log.FromContext(ctx).WithValues("apiID", api.ID, "name", api.Name)

	stages, err := r.repo.ListStages(ctx, api.ID)
	if err != nil {
		if apigateway.IsNotFound(err) {
			logger.Info("API already absent")
			return api, nil
		}
		return nil, err
	}

	if !apigateway.IsOrphaned(stages) {
		logger.Info("API retained", "remainingStages", len(stages))
		return api, nil
	}

	if err := r.repo.DeleteAPI(ctx, api.ID); err != nil {
		if apigateway.IsNotFound(err) {
			logger.Info("API already absent")
			return api, nil
		}
		return nil, err
	}

	logger.Info("API deleted")
	return api, nil
}
