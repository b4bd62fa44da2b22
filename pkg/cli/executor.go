package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/google/uuid"

	"apigw-resource/internal/domain/lifecycle"
	"apigw-resource/pkg/mapper"
)

// EventRunner processes one lifecycle event.
type EventRunner interface {
	Handle(ctx context.Context, event *cfn.Event) *lifecycle.Report
}

// Executor turns manifests and stored state into lifecycle events.
type Executor struct {
	state  *StateManager
	events EventRunner
	out    io.Writer
	dryRun bool
}

func NewExecutor(state *StateManager, events EventRunner, out io.Writer, dryRun bool) *Executor {
	return &Executor{state: state, events: events, out: out, dryRun: dryRun}
}

// Apply sends Create for unknown resources and Update with the stored
// properties otherwise. State is saved only on success.
func (e *Executor) Apply(ctx context.Context, resources []Resource) error {
	for _, r := range resources {
		name := r.Metadata.Name

		existing, err := e.state.LoadState(name)
		if err != nil {
			return fmt.Errorf("failed to load state for %s: %w", name, err)
		}

		command := lifecycle.CommandCreate
		var oldProps map[string]interface{}
		physicalID := ""
		if existing != nil {
			command = lifecycle.CommandUpdate
			oldProps = existing.Properties
			physicalID = existing.PhysicalResourceID
		}

		if e.dryRun {
			fmt.Fprintf(e.out, "[DRY-RUN] %s %s\n", command, name)
			continue
		}

		report := e.events.Handle(ctx, mapper.NewEvent(command, uuid.NewString(), name, physicalID, r.Spec, oldProps))
		e.print(name, command, report)
		if report.Status != lifecycle.StatusSuccess {
			return fmt.Errorf("%s %s failed: %s", command, name, report.Reason)
		}

		state := &ResourceState{Name: name, Properties: r.Spec, PhysicalResourceID: report.PhysicalResourceID}
		if existing != nil {
			state.CreatedAt = existing.CreatedAt
		}
		if err := e.state.SaveState(state); err != nil {
			return err
		}
	}
	return nil
}

// Delete sends Delete with the stored properties and removes the state on
// success.
func (e *Executor) Delete(ctx context.Context, names []string) error {
	for _, name := range names {
		existing, err := e.state.LoadState(name)
		if err != nil {
			return fmt.Errorf("failed to load state for %s: %w", name, err)
		}
		if existing == nil {
			return fmt.Errorf("resource %s not found in state", name)
		}

		if e.dryRun {
			fmt.Fprintf(e.out, "[DRY-RUN] %s %s\n", lifecycle.CommandDelete, name)
			continue
		}

		event := mapper.NewEvent(lifecycle.CommandDelete, uuid.NewString(), name, existing.PhysicalResourceID, existing.Properties, nil)
		report := e.events.Handle(ctx, event)
		e.print(name, lifecycle.CommandDelete, report)
		if report.Status != lifecycle.StatusSuccess {
			return fmt.Errorf("%s %s failed: %s", lifecycle.CommandDelete, name, report.Reason)
		}

		if err := e.state.DeleteState(name); err != nil {
			return err
		}
	}
	return nil
}

func (e *Executor) print(name string, command lifecycle.Command, report *lifecycle.Report) {
	if report.Status == lifecycle.StatusSuccess {
		fmt.Fprintf(e.out, "%s %s: %s (%s)\n", command, name, report.Status, report.PhysicalResourceID)
		return
	}
	fmt.Fprintf(e.out, "%s %s: %s: %s\n", command, name, report.Status, report.Reason)
}
