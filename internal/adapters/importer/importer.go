// Package importer drives the external schema importer that creates and
// replaces REST APIs from definition documents.
package importer

import (
	"context"
	"fmt"
	"io"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"apigw-resource/internal/domain/apigateway"
	"apigw-resource/internal/domain/lifecycle"
	"apigw-resource/internal/ports"
	"apigw-resource/pkg/metrics"
)

const (
	DefaultJavaBin = "java"
	DefaultJar     = "aws-apigateway-importer/target/aws-apigateway-importer-1.0.3-SNAPSHOT-jar-with-dependencies.jar"
)

// Config locates the importer and the target region.
type Config struct {
	JavaBin string
	Jar     string
	// Dir is the importer's working directory.
	Dir    string
	Region string
	// Endpoint overrides the service endpoint in the child environment.
	Endpoint string
	// Output receives the importer's output while it runs.
	Output io.Writer
}

// Importer implements ports.SchemaImporter with the Java importer.
type Importer struct {
	cfg     Config
	runner  Runner
	locator ports.APILocator
}

var _ ports.SchemaImporter = (*Importer)(nil)

// New creates an importer. The locator resolves APIs created by the importer.
func New(cfg Config, runner Runner, locator ports.APILocator) *Importer {
	if cfg.JavaBin == "" {
		cfg.JavaBin = DefaultJavaBin
	}
	if cfg.Jar == "" {
		cfg.Jar = DefaultJar
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Importer{cfg: cfg, runner: runner, locator: locator}
}

// Create imports a new API and deploys it to stage when one is given.
func (i *Importer) Create(ctx context.Context, artifact *lifecycle.Artifact, stage string) (*apigateway.RemoteAPI, error) {
	if err := i.run(ctx, "create", stage, "--create", artifact.Path); err != nil {
		return nil, err
	}

	api, err := i.locator.Find(ctx, artifact.Title)
	if err != nil {
		return nil, err
	}
	if api == nil {
		return nil, apigateway.NewNotFoundError("resolve created API", artifact.Title, apigateway.ErrAPINotFound)
	}
	if err := api.Validate(); err != nil {
		return nil, apigateway.NewRemoteServiceError("resolve created API", artifact.Title, err)
	}
	return api, nil
}

// Update replaces existing with the definition and redeploys stage.
func (i *Importer) Update(ctx context.Context, existing *apigateway.RemoteAPI, artifact *lifecycle.Artifact, stage string) (*apigateway.RemoteAPI, error) {
	if err := existing.Validate(); err != nil {
		return nil, apigateway.NewValidationError("update", err)
	}
	if err := i.run(ctx, "update", stage, "--update", existing.ID, artifact.Path); err != nil {
		return nil, err
	}
	return existing.Clone(), nil
}

// Args builds the importer command line for an operation.
func (i *Importer) Args(stage string, operation ...string) []string {
	args := []string{"-jar", i.cfg.Jar}
	if stage != "" {
		args = append(args, "--deploy", stage)
	}
	args = append(args, operation...)
	if i.cfg.Region != "" {
		args = append(args, "--region", i.cfg.Region)
	}
	return args
}

func (i *Importer) run(ctx context.Context, op, stage string, operation ...string) error {
	logger := log.FromContext(ctx).WithValues("operation", op, "stage", stage)

	args := i.Args(stage, operation...)
	opts := []Option{}
	if i.cfg.Dir != "" {
		opts = append(opts, WithWorkingDir(i.cfg.Dir))
	}
	if i.cfg.Endpoint != "" {
		opts = append(opts, WithEnvVar("AWS_ENDPOINT_URL", i.cfg.Endpoint))
	}
	if i.cfg.Region != "" {
		opts = append(opts, WithEnvVar("AWS_REGION", i.cfg.Region))
	}
	if i.cfg.Output != nil {
		opts = append(opts, WithOutput(i.cfg.Output))
	}

	logger.Info("Running schema importer", "program", i.cfg.JavaBin, "args", args)
	recorder := metrics.NewImporterMetricsRecorder(op)
	result, err := i.runner.Run(ctx, i.cfg.JavaBin, args, opts...)
	recorder.Record(err)

	if result != nil {
		logger.V(1).Info("Schema importer finished", "exitCode", result.ExitCode, "stdout", result.Stdout, "stderr", result.Stderr)
	}
	if err != nil {
		return apigateway.NewImporterError(op, result.Combined(), fmt.Errorf("schema importer failed: %w", err))
	}
	return nil
}
