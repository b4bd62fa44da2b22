package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"gopkg.in/yaml.v3"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"apigw-resource/internal/domain/apigateway"
	"apigw-resource/internal/domain/lifecycle"
	"apigw-resource/internal/ports"
	"apigw-resource/pkg/metrics"
)

// Client is the subset of the S3 SDK client used by Fetcher.
type Client interface {
	GetObject(ctx context.Context, params *awss3.GetObjectInput, optFns ...func(*awss3.Options)) (*awss3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *awss3.HeadObjectInput, optFns ...func(*awss3.Options)) (*awss3.HeadObjectOutput, error)
}

var _ Client = (*awss3.Client)(nil)

// Fetcher implements ports.ArtifactFetcher on S3.
type Fetcher struct {
	client  Client
	workDir string
}

var _ ports.ArtifactFetcher = (*Fetcher)(nil)

// NewFetcher creates a fetcher that materializes definitions under workDir.
// An empty workDir means the system temp directory.
func NewFetcher(cfg aws.Config, workDir string) *Fetcher {
	var options []func(*awss3.Options)
	if cfg.BaseEndpoint != nil {
		options = append(options, func(o *awss3.Options) {
			o.UsePathStyle = true // LocalStack requires path-style URLs
		})
	}
	return NewFetcherWithClient(awss3.NewFromConfig(cfg, options...), workDir)
}

func NewFetcherWithClient(client Client, workDir string) *Fetcher {
	return &Fetcher{client: client, workDir: workDir}
}

// Fetch downloads the definition at loc, substitutes variables and writes
// the result into a fresh directory.
func (f *Fetcher) Fetch(ctx context.Context, loc lifecycle.StorageLocation, variables map[string]string) (*lifecycle.Artifact, error) {
	logger := log.FromContext(ctx).WithValues("location", loc.String())

	input := &awss3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	}
	if loc.Version != "" {
		input.VersionId = aws.String(loc.Version)
	}

	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceS3, "GetObject")
	output, err := f.client.GetObject(ctx, input)
	recorder.Record(err)
	if err != nil {
		return nil, classify("GetObject", loc, err)
	}
	defer output.Body.Close()

	raw, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, apigateway.NewRemoteServiceError("GetObject", loc.String(), fmt.Errorf("failed to read object: %w", err))
	}

	doc := Substitute(raw, variables)

	title, err := ResolveTitle(doc)
	if err != nil {
		return nil, apigateway.NewValidationError("resolve title "+loc.String(), err)
	}

	dir, err := os.MkdirTemp(f.workDir, "definition-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create work directory: %w", err)
	}

	name := filepath.Base(loc.Key)
	if name == "." || name == "/" {
		name = "definition"
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, doc, 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("failed to write definition: %w", err)
	}

	logger.V(1).Info("Definition materialized", "path", path, "title", title, "bytes", len(doc))
	return &lifecycle.Artifact{Path: path, Dir: dir, Document: doc, Title: title}, nil
}

// ContentIdentity returns the object's entity tag.
func (f *Fetcher) ContentIdentity(ctx context.Context, loc lifecycle.StorageLocation) (string, error) {
	input := &awss3.HeadObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	}
	if loc.Version != "" {
		input.VersionId = aws.String(loc.Version)
	}

	recorder := metrics.NewAWSAPIMetricsRecorder(metrics.ServiceS3, "HeadObject")
	output, err := f.client.HeadObject(ctx, input)
	recorder.Record(err)
	if err != nil {
		return "", classify("HeadObject", loc, err)
	}
	return aws.ToString(output.ETag), nil
}

// Substitute replaces every quoted "$NAME" placeholder with the quoted
// value. Keys are applied in sorted order.
func Substitute(doc []byte, variables map[string]string) []byte {
	if len(variables) == 0 {
		return doc
	}

	keys := make([]string, 0, len(variables))
	for k := range variables {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := doc
	for _, k := range keys {
		out = bytes.ReplaceAll(out, []byte(`"$`+k+`"`), []byte(`"`+variables[k]+`"`))
	}
	return out
}

type definitionHeader struct {
	Info struct {
		Title string `yaml:"title"`
	} `yaml:"info"`
}

// ResolveTitle returns info.title from a JSON or YAML definition.
func ResolveTitle(doc []byte) (string, error) {
	var header definitionHeader
	if err := yaml.Unmarshal(doc, &header); err != nil {
		return "", fmt.Errorf("failed to parse definition: %w", err)
	}
	if header.Info.Title == "" {
		return "", lifecycle.ErrTitleRequired
	}
	return header.Info.Title, nil
}

func classify(op string, loc lifecycle.StorageLocation, err error) error {
	if isNotFound(err) {
		return apigateway.NewNotFoundError(op, loc.String(), err)
	}
	return apigateway.NewRemoteServiceError(op, loc.String(), fmt.Errorf("failed to call %s: %w", op, err))
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	var noBucket *types.NoSuchBucket
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &noBucket) || errors.As(err, &notFound) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NoSuchVersion", "NotFound":
			return true
		}
	}
	return false
}
