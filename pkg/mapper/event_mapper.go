package mapper

import (
	"fmt"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/go-viper/mapstructure/v2"

	"apigw-resource/internal/domain/lifecycle"
)

// EventToRequest maps an orchestrator event onto a lifecycle request.
// Missing ResourceProperties leave Current nil so validation can reject it.
func EventToRequest(event *cfn.Event) (*lifecycle.Request, error) {
	req := &lifecycle.Request{
		Command:            lifecycle.Command(event.RequestType),
		RequestID:          event.RequestID,
		StackID:            event.StackID,
		LogicalResourceID:  event.LogicalResourceID,
		PhysicalResourceID: event.PhysicalResourceID,
		ResponseURL:        event.ResponseURL,
	}

	current, err := PropertiesToDefinition(event.ResourceProperties)
	if err != nil {
		return req, fmt.Errorf("failed to decode ResourceProperties: %w", err)
	}
	req.Current = current

	previous, err := PropertiesToDefinition(event.OldResourceProperties)
	if err != nil {
		return req, fmt.Errorf("failed to decode OldResourceProperties: %w", err)
	}
	req.Previous = previous

	return req, nil
}

// PropertiesToDefinition decodes resource properties. Scalars are weakly
// typed, so numeric variables and versions become strings.
func PropertiesToDefinition(props map[string]interface{}) (*lifecycle.Definition, error) {
	if props == nil {
		return nil, nil
	}

	def := &lifecycle.Definition{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           def,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(props); err != nil {
		return nil, err
	}
	return def, nil
}

// ReportToResponse maps a lifecycle report onto the orchestrator response.
func ReportToResponse(report *lifecycle.Report) cfn.Response {
	data := report.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	return cfn.Response{
		Status:             cfn.StatusType(report.Status),
		RequestID:          report.RequestID,
		LogicalResourceID:  report.LogicalResourceID,
		StackID:            report.StackID,
		PhysicalResourceID: report.PhysicalResourceID,
		Reason:             report.Reason,
		Data:               data,
	}
}

// NewEvent builds a synthetic orchestrator event for local invocations.
func NewEvent(command lifecycle.Command, requestID, logicalID, physicalID string, props, oldProps map[string]interface{}) *cfn.Event {
	return &cfn.Event{
		RequestType:           cfn.RequestType(command),
		RequestID:             requestID,
		StackID:               "local",
		LogicalResourceID:     logicalID,
		PhysicalResourceID:    physicalID,
		ResourceType:          "Custom::ApiGateway",
		ResourceProperties:    props,
		OldResourceProperties: oldProps,
	}
}
