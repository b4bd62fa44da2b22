package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-lambda-go/cfn"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"apigw-resource/internal/domain/lifecycle"
)

// maxEventBytes bounds an event body.
const maxEventBytes = 1 << 20

// EventHandler processes one custom resource event.
type EventHandler interface {
	Handle(ctx context.Context, event *cfn.Event) *lifecycle.Report
}

type Handlers struct {
	events EventHandler
	config *ServerConfig
}

func NewHandlers(events EventHandler, config *ServerConfig) *Handlers {
	return &Handlers{
		events: events,
		config: config,
	}
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Version:   h.config.Version,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	writeJSON(w, http.StatusOK, NewSuccessResponse(resp))
}

// Events runs one lifecycle event and returns its report. The report is
// also uploaded when the event carries a ResponseURL.
func (h *Handlers) Events(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxEventBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, NewErrorResponse("INVALID_BODY", "failed to read request body", err.Error()))
		return
	}

	var event cfn.Event
	if err := json.Unmarshal(body, &event); err != nil {
		writeJSON(w, http.StatusBadRequest, NewErrorResponse("INVALID_EVENT", "request body is not a lifecycle event", err.Error()))
		return
	}
	if event.RequestType == "" {
		writeJSON(w, http.StatusBadRequest, NewErrorResponse("INVALID_EVENT", "RequestType is required", ""))
		return
	}

	report := h.events.Handle(r.Context(), &event)
	resp := ToReportResponse(report)

	if report.Status != lifecycle.StatusSuccess {
		log.FromContext(r.Context()).Info("Lifecycle event failed", "requestID", event.RequestID, "reason", report.Reason)
		code, status := "RECONCILE_FAILED", http.StatusUnprocessableEntity
		if report.Invalid {
			code, status = "INVALID_EVENT", http.StatusBadRequest
		}
		out := NewErrorResponse(code, report.Reason, "")
		out.Data = resp
		writeJSON(w, status, out)
		return
	}
	writeJSON(w, http.StatusOK, NewSuccessResponse(resp))
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
