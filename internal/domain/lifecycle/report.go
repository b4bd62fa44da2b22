package lifecycle

import "apigw-resource/internal/domain/apigateway"

// Status is the result reported to the orchestrator.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Report is the one-shot message sent back to the orchestrator.
type Report struct {
	Status             Status
	Reason             string
	PhysicalResourceID string
	Data               map[string]interface{}

	RequestID         string
	StackID           string
	LogicalResourceID string
	ResponseURL       string

	// Invalid marks a FAILED report caused by a malformed request rather
	// than by a remote failure.
	Invalid bool
}

// SuccessReport reports api as the durable resource handle.
func SuccessReport(req *Request, api *apigateway.RemoteAPI) *Report {
	r := newReport(req, StatusSuccess)
	if api == nil {
		// Nothing exists remotely; keep the handle the orchestrator knows.
		r.PhysicalResourceID = req.PhysicalResourceID
		r.Data = map[string]interface{}{}
		return r
	}
	r.PhysicalResourceID = api.ID
	r.Data = map[string]interface{}{
		"id":   api.ID,
		"name": api.Name,
	}
	return r
}

// FailedReport reports err with an empty payload and the inbound physical id.
func FailedReport(req *Request, err error) *Report {
	r := newReport(req, StatusFailed)
	r.PhysicalResourceID = req.PhysicalResourceID
	r.Data = map[string]interface{}{}
	if err != nil {
		r.Reason = err.Error()
		r.Invalid = apigateway.IsValidation(err)
	}
	return r
}

func newReport(req *Request, status Status) *Report {
	return &Report{
		Status:            status,
		RequestID:         req.RequestID,
		StackID:           req.StackID,
		LogicalResourceID: req.LogicalResourceID,
		ResponseURL:       req.ResponseURL,
	}
}
