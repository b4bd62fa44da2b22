package apigateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsapigw "github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/aws-sdk-go-v2/service/apigateway/types"
	"github.com/aws/smithy-go"

	"apigw-resource/internal/domain/apigateway"
	"apigw-resource/internal/ports"
	"apigw-resource/pkg/metrics"
)

// Client is the subset of the API Gateway SDK client used by Repository.
type Client interface {
	GetRestApis(ctx context.Context, params *awsapigw.GetRestApisInput, optFns ...func(*awsapigw.Options)) (*awsapigw.GetRestApisOutput, error)
	GetStages(ctx context.Context, params *awsapigw.GetStagesInput, optFns ...func(*awsapigw.Options)) (*awsapigw.GetStagesOutput, error)
	DeleteStage(ctx context.Context, params *awsapigw.DeleteStageInput, optFns ...func(*awsapigw.Options)) (*awsapigw.DeleteStageOutput, error)
	DeleteRestApi(ctx context.Context, params *awsapigw.DeleteRestApiInput, optFns ...func(*awsapigw.Options)) (*awsapigw.DeleteRestApiOutput, error)
}

var _ Client = (*awsapigw.Client)(nil)

// Repository implements ports.APIGatewayRepository on REST APIs.
type Repository struct {
	client Client
}

var _ ports.APIGatewayRepository = (*Repository)(nil)

// NewRepository creates a repository from an AWS config. A BaseEndpoint set
// on the config (LocalStack) is honored by the SDK.
func NewRepository(cfg aws.Config) *Repository {
	return &Repository{client: awsapigw.NewFromConfig(cfg)}
}

// NewRepositoryWithClient creates a repository around an existing client.
func NewRepositoryWithClient(client Client) *Repository {
	return &Repository{client: client}
}

func (r *Repository) ListAPIs(ctx context.Context, position string, limit int32) (*apigateway.APIPage, error) {
	input := &awsapigw.GetRestApisInput{
		Limit: aws.Int32(limit),
	}
	if position != "" {
		input.Position = aws.String(position)
	}

	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceAPIGateway, "GetRestApis")
	output, err := r.client.GetRestApis(ctx, input)
	recorder.Record(err)
	if err != nil {
		return nil, classify("GetRestApis", "", apigateway.ErrAPINotFound, err)
	}

	page := &apigateway.APIPage{
		Items:    make([]apigateway.RemoteAPI, 0, len(output.Items)),
		Position: aws.ToString(output.Position),
	}
	for _, item := range output.Items {
		page.Items = append(page.Items, apigateway.RemoteAPI{
			ID:   aws.ToString(item.Id),
			Name: aws.ToString(item.Name),
		})
	}
	return page, nil
}

func (r *Repository) ListStages(ctx context.Context, apiID string) ([]apigateway.Stage, error) {
	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceAPIGateway, "GetStages")
	output, err := r.client.GetStages(ctx, &awsapigw.GetStagesInput{
		RestApiId: aws.String(apiID),
	})
	recorder.Record(err)
	if err != nil {
		return nil, classify("GetStages", apiID, apigateway.ErrAPINotFound, err)
	}

	stages := make([]apigateway.Stage, 0, len(output.Item))
	for _, s := range output.Item {
		stages = append(stages, apigateway.Stage{
			Name:        aws.ToString(s.StageName),
			ParentAPIID: apiID,
		})
	}
	return stages, nil
}

func (r *Repository) DeleteStage(ctx context.Context, apiID, stageName string) error {
	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceAPIGateway, "DeleteStage")
	_, err := r.client.DeleteStage(ctx, &awsapigw.DeleteStageInput{
		RestApiId: aws.String(apiID),
		StageName: aws.String(stageName),
	})
	recorder.Record(err)
	if err != nil {
		return classify("DeleteStage", apiID+"/"+stageName, apigateway.ErrStageMissing, err)
	}
	return nil
}

func (r *Repository) DeleteAPI(ctx context.Context, apiID string) error {
	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceAPIGateway, "DeleteRestApi")
	_, err := r.client.DeleteRestApi(ctx, &awsapigw.DeleteRestApiInput{
		RestApiId: aws.String(apiID),
	})
	recorder.Record(err)
	if err != nil {
		return classify("DeleteRestApi", apiID, apigateway.ErrAPINotFound, err)
	}
	return nil
}

// classify maps SDK failures onto domain error kinds. Not-found failures
// also match missing, the sentinel for the resource the call addressed.
func classify(op, resource string, missing, err error) error {
	if isNotFound(err) {
		return apigateway.NewNotFoundError(op, resource, fmt.Errorf("%w: %w", missing, err))
	}
	return apigateway.NewRemoteServiceError(op, resource, fmt.Errorf("failed to call %s: %w", op, err))
}

func isNotFound(err error) bool {
	var nf *types.NotFoundException
	if errors.As(err, &nf) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFoundException"
}
