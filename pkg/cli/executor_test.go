package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apigw-resource/internal/domain/apigateway"
	"apigw-resource/internal/domain/lifecycle"
	"apigw-resource/pkg/mapper"
)

type fakeEvents struct {
	events []*cfn.Event
	fail   bool
}

func (f *fakeEvents) Handle(_ context.Context, event *cfn.Event) *lifecycle.Report {
	f.events = append(f.events, event)
	req, _ := mapper.EventToRequest(event)
	if f.fail {
		return lifecycle.FailedReport(req, apigateway.NewImporterError("create", "", assert.AnError))
	}
	return lifecycle.SuccessReport(req, &apigateway.RemoteAPI{ID: "a1", Name: event.LogicalResourceID})
}

func ordersResource(stage string) Resource {
	return Resource{
		Kind:     ResourceKind,
		Metadata: Metadata{Name: "orders"},
		Spec: map[string]interface{}{
			"Definition": map[string]interface{}{"S3Bucket": "defs", "S3Key": "orders.yaml"},
			"StageName":  stage,
		},
	}
}

func TestExecutor_ApplyCreateThenUpdateThenDelete(t *testing.T) {
	ctx := context.Background()
	state := NewStateManager(t.TempDir())
	events := &fakeEvents{}
	var out bytes.Buffer
	e := NewExecutor(state, events, &out, false)

	require.NoError(t, e.Apply(ctx, []Resource{ordersResource("prod")}))
	require.Len(t, events.events, 1)
	assert.Equal(t, cfn.RequestCreate, events.events[0].RequestType)
	assert.Empty(t, events.events[0].PhysicalResourceID)
	assert.NotEmpty(t, events.events[0].RequestID)

	stored, err := state.LoadState("orders")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "a1", stored.PhysicalResourceID)

	require.NoError(t, e.Apply(ctx, []Resource{ordersResource("staging")}))
	require.Len(t, events.events, 2)
	update := events.events[1]
	assert.Equal(t, cfn.RequestUpdate, update.RequestType)
	assert.Equal(t, "a1", update.PhysicalResourceID)
	assert.Equal(t, "prod", update.OldResourceProperties["StageName"])
	assert.Equal(t, "staging", update.ResourceProperties["StageName"])

	require.NoError(t, e.Delete(ctx, []string{"orders"}))
	require.Len(t, events.events, 3)
	del := events.events[2]
	assert.Equal(t, cfn.RequestDelete, del.RequestType)
	assert.Equal(t, "staging", del.ResourceProperties["StageName"])

	stored, err = state.LoadState("orders")
	require.NoError(t, err)
	assert.Nil(t, stored)
	assert.Contains(t, out.String(), "Delete orders: SUCCESS")
}

func TestExecutor_FailureKeepsState(t *testing.T) {
	ctx := context.Background()
	state := NewStateManager(t.TempDir())
	events := &fakeEvents{fail: true}
	e := NewExecutor(state, events, &bytes.Buffer{}, false)

	err := e.Apply(ctx, []Resource{ordersResource("prod")})
	require.Error(t, err)

	stored, loadErr := state.LoadState("orders")
	require.NoError(t, loadErr)
	assert.Nil(t, stored)
}

func TestExecutor_DeleteUnknown(t *testing.T) {
	e := NewExecutor(NewStateManager(t.TempDir()), &fakeEvents{}, &bytes.Buffer{}, false)
	assert.Error(t, e.Delete(context.Background(), []string{"orders"}))
}

func TestExecutor_DryRun(t *testing.T) {
	events := &fakeEvents{}
	var out bytes.Buffer
	e := NewExecutor(NewStateManager(t.TempDir()), events, &out, true)

	require.NoError(t, e.Apply(context.Background(), []Resource{ordersResource("prod")}))
	assert.Empty(t, events.events)
	assert.Contains(t, out.String(), "[DRY-RUN] Create orders")
}
