// Package cli is the command line entry point: the Lambda runtime, the HTTP
// server and local workflows share one cobra command tree.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
	ctrllog "sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"apigw-resource/internal/domain/lifecycle"
	"apigw-resource/pkg/api"
	"apigw-resource/pkg/clients"
	"apigw-resource/pkg/config"
	"apigw-resource/pkg/mapper"
)

// Version is set at build time.
var Version = "dev"

type options struct {
	configPath string
	region     string
	endpoint   string
	stateDir   string
	zap        zap.Options
}

func (o *options) loadConfig() (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	if o.region != "" {
		cfg.AWS.Region = o.region
	}
	if o.endpoint != "" {
		cfg.AWS.Endpoint = o.endpoint
	}
	if o.stateDir != "" {
		cfg.StateDir = o.stateDir
	}
	return cfg, nil
}

func (o *options) factory(ctx context.Context) (*clients.Factory, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	return clients.NewFactory(ctx, cfg)
}

// localFactory is the factory for interactive commands. Development logging
// also streams importer output to w.
func (o *options) localFactory(ctx context.Context, w io.Writer) (*clients.Factory, error) {
	f, err := o.factory(ctx)
	if err != nil {
		return nil, err
	}
	if o.zap.Development {
		f.WithImporterOutput(w)
	}
	return f, nil
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	o := &options{zap: zap.Options{Development: true}}

	root := &cobra.Command{
		Use:          "apigw-resource",
		Short:        "Custom resource that keeps API Gateway REST APIs in sync with stored definitions",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			ctrllog.SetLogger(zap.New(zap.UseFlagOptions(&o.zap)))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
				return runLambda(cmd.Context(), o)
			}
			return cmd.Help()
		},
	}

	goFlags := flag.NewFlagSet("zap", flag.ContinueOnError)
	o.zap.BindFlags(goFlags)
	root.PersistentFlags().AddGoFlagSet(goFlags)

	root.PersistentFlags().StringVar(&o.configPath, "config", "", "Path to a YAML config file")
	root.PersistentFlags().StringVar(&o.region, "region", "", "AWS region (default: config or AWS_REGION)")
	root.PersistentFlags().StringVar(&o.endpoint, "endpoint", "", "AWS endpoint URL (LocalStack)")
	root.PersistentFlags().StringVar(&o.stateDir, "state-dir", "", "Local state directory for apply and delete")

	root.AddCommand(
		newLambdaCommand(o),
		newServeCommand(o),
		newInvokeCommand(o),
		newApplyCommand(o),
		newDeleteCommand(o),
		newGetCommand(o),
	)
	return root
}

func newLambdaCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Run as the AWS Lambda custom resource handler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLambda(cmd.Context(), o)
		},
	}
}

func runLambda(ctx context.Context, o *options) error {
	f, err := o.factory(ctx)
	if err != nil {
		return err
	}
	handler := f.EventHandler(f.ResponseSink())
	lambda.Start(handler.HandleEvent)
	return nil
}

func newServeCommand(o *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lifecycle events over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			f, err := o.factory(ctx)
			if err != nil {
				return err
			}
			cfg := f.Config()
			if addr == "" {
				addr = cfg.ListenAddr
			}

			server := api.NewServer(&api.ServerConfig{
				Addr:    addr,
				Version: Version,
				Auth:    api.AuthConfig{Enabled: len(cfg.APIKeys) > 0, APIKeys: cfg.APIKeys},
			}, f.EventHandler(f.ResponseSink()), ctrllog.Log.WithName("api"))
			return server.Start(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: config or APIGW_LISTEN_ADDR)")
	return cmd
}

func newInvokeCommand(o *options) *cobra.Command {
	var eventFile string

	cmd := &cobra.Command{
		Use:   "invoke",
		Short: "Run one lifecycle event from a JSON file and print the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			event, err := readEvent(eventFile)
			if err != nil {
				return err
			}

			f, err := o.localFactory(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			report := f.EventHandler(f.ResponseSink()).Handle(cmd.Context(), event)

			out, err := json.MarshalIndent(mapper.ReportToResponse(report), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))

			if report.Status != lifecycle.StatusSuccess {
				return errors.New(report.Reason)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&eventFile, "event", "", "Path to a custom resource event (JSON)")
	_ = cmd.MarkFlagRequired("event")
	return cmd
}

func readEvent(path string) (*cfn.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event: %w", err)
	}
	var event cfn.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to parse event %s: %w", path, err)
	}
	return &event, nil
}

func newApplyCommand(o *options) *cobra.Command {
	var (
		files  []string
		name   string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create or update the ApiGateway resources of a manifest",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resources []Resource
			for _, file := range files {
				parsed, err := ParseFile(file)
				if err != nil {
					return err
				}
				resources = append(resources, parsed...)
			}
			resources = filterByName(resources, name)
			if len(resources) == 0 {
				return fmt.Errorf("no %s resources found", ResourceKind)
			}

			f, err := o.localFactory(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			executor := NewExecutor(NewStateManager(f.Config().StateDir), f.EventHandler(f.ResponseSink()), cmd.OutOrStdout(), dryRun)
			return executor.Apply(cmd.Context(), resources)
		},
	}
	cmd.Flags().StringArrayVarP(&files, "file", "f", nil, "Manifest file (repeatable)")
	cmd.Flags().StringVar(&name, "name", "", "Only apply the resource with this name")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the events that would be sent")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func filterByName(resources []Resource, name string) []Resource {
	if name == "" {
		return resources
	}
	var out []Resource
	for _, r := range resources {
		if r.Metadata.Name == name {
			out = append(out, r)
		}
	}
	return out
}

func newDeleteCommand(o *options) *cobra.Command {
	var (
		names  []string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete resources previously applied from this machine",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := o.localFactory(cmd.Context(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			executor := NewExecutor(NewStateManager(f.Config().StateDir), f.EventHandler(f.ResponseSink()), cmd.OutOrStdout(), dryRun)
			return executor.Delete(cmd.Context(), names)
		},
	}
	cmd.Flags().StringArrayVar(&names, "name", nil, "Resource name (repeatable)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the events that would be sent")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newGetCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "List resources in local state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := o.loadConfig()
			if err != nil {
				return err
			}
			return PrintStates(cmd.OutOrStdout(), NewStateManager(cfg.StateDir))
		},
	}
}

// Main runs the root command and exits non-zero on failure.
func Main() {
	if err := NewRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
