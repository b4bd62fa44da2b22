package api

import (
	"apigw-resource/internal/domain/lifecycle"
)

// APIResponse is the envelope of every JSON response.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

// ReportResponse is the JSON form of a lifecycle report.
type ReportResponse struct {
	Status             string                 `json:"status"`
	Reason             string                 `json:"reason,omitempty"`
	PhysicalResourceID string                 `json:"physicalResourceId"`
	Data               map[string]interface{} `json:"data"`
	RequestID          string                 `json:"requestId"`
	StackID            string                 `json:"stackId,omitempty"`
	LogicalResourceID  string                 `json:"logicalResourceId"`
}

func NewSuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
	}
}

func NewErrorResponse(code, message, details string) APIResponse {
	return APIResponse{
		Success: false,
		Error: &APIError{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func ToReportResponse(report *lifecycle.Report) ReportResponse {
	data := report.Data
	if data == nil {
		data = map[string]interface{}{}
	}
	return ReportResponse{
		Status:             string(report.Status),
		Reason:             report.Reason,
		PhysicalResourceID: report.PhysicalResourceID,
		Data:               data,
		RequestID:          report.RequestID,
		StackID:            report.StackID,
		LogicalResourceID:  report.LogicalResourceID,
	}
}
