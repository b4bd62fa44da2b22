package clients

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"

	awsapigw "apigw-resource/internal/adapters/aws/apigateway"
	awss3 "apigw-resource/internal/adapters/aws/s3"
	cfnadapter "apigw-resource/internal/adapters/cfn"
	"apigw-resource/internal/adapters/importer"
	"apigw-resource/internal/ports"
	apigwuc "apigw-resource/internal/usecases/apigateway"
	awsprovider "apigw-resource/pkg/aws"
	"apigw-resource/pkg/config"
)

// Factory wires adapters and use cases from runtime settings.
type Factory struct {
	cfg       config.Config
	awsConfig aws.Config
	runner    importer.Runner
	http      cfnadapter.HTTPClient
	output    io.Writer
}

// NewFactory loads the AWS config for cfg.
func NewFactory(ctx context.Context, cfg config.Config) (*Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	awsConfig, err := awsprovider.LoadConfig(ctx, cfg.AWS)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewFactoryWithAWSConfig(cfg, awsConfig), nil
}

// NewFactoryWithAWSConfig creates a factory around an already loaded config.
func NewFactoryWithAWSConfig(cfg config.Config, awsConfig aws.Config) *Factory {
	return &Factory{cfg: cfg, awsConfig: awsConfig, runner: importer.ExecRunner{}}
}

// WithRunner replaces the importer process runner.
func (f *Factory) WithRunner(runner importer.Runner) *Factory {
	f.runner = runner
	return f
}

// WithHTTPClient replaces the client used to upload reports.
func (f *Factory) WithHTTPClient(client cfnadapter.HTTPClient) *Factory {
	f.http = client
	return f
}

// WithImporterOutput streams importer output to w while it runs.
func (f *Factory) WithImporterOutput(w io.Writer) *Factory {
	f.output = w
	return f
}

func (f *Factory) Config() config.Config {
	return f.cfg
}

func (f *Factory) Repository() ports.APIGatewayRepository {
	return awsapigw.NewRepository(f.awsConfig)
}

func (f *Factory) Fetcher() ports.ArtifactFetcher {
	return awss3.NewFetcher(f.awsConfig, f.cfg.WorkDir)
}

func (f *Factory) Importer(locator ports.APILocator) ports.SchemaImporter {
	return importer.New(importer.Config{
		JavaBin:  f.cfg.Importer.JavaBin,
		Jar:      f.cfg.Importer.JarPath(),
		Dir:      f.cfg.Importer.Dir,
		Region:   f.awsConfig.Region,
		Endpoint: f.cfg.AWS.Endpoint,
		Output:   f.output,
	}, f.runner, locator)
}

// ResponseSink uploads reports to the event response URL.
func (f *Factory) ResponseSink() ports.ReportSink {
	return cfnadapter.NewResponseSink(f.http)
}

// LifecycleUseCase wires the controller with sink as its report destination.
func (f *Factory) LifecycleUseCase(sink ports.ReportSink) ports.LifecycleUseCase {
	repo := f.Repository()
	locator := apigwuc.NewLocator(repo)
	return apigwuc.NewLifecycleController(repo, locator, f.Fetcher(), f.Importer(locator), sink)
}

// EventHandler wires a custom resource event handler reporting to sink.
func (f *Factory) EventHandler(sink ports.ReportSink) *cfnadapter.Handler {
	return cfnadapter.NewHandler(f.LifecycleUseCase(sink), sink)
}
