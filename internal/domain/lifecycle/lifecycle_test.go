package lifecycle

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"apigw-resource/internal/domain/apigateway"
)

func TestRequest_Validate(t *testing.T) {
	valid := &Definition{Location: StorageLocation{Bucket: "defs", Key: "api.json"}}

	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{
		{
			name: "valid create",
			req:  &Request{Command: CommandCreate, Current: valid},
		},
		{
			name: "valid delete with version",
			req: &Request{Command: CommandDelete, Current: &Definition{
				Location: StorageLocation{Bucket: "defs", Key: "api.json", Version: "v2"},
			}},
		},
		{
			name:    "unknown command",
			req:     &Request{Command: "Replace", Current: valid},
			wantErr: ErrInvalidCommand,
		},
		{
			name:    "missing properties",
			req:     &Request{Command: CommandUpdate},
			wantErr: ErrPropertiesRequired,
		},
		{
			name:    "missing bucket",
			req:     &Request{Command: CommandCreate, Current: &Definition{Location: StorageLocation{Key: "api.json"}}},
			wantErr: ErrBucketRequired,
		},
		{
			name:    "missing key",
			req:     &Request{Command: CommandCreate, Current: &Definition{Location: StorageLocation{Bucket: "defs"}}},
			wantErr: ErrKeyRequired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Request.Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStorageLocation_String(t *testing.T) {
	loc := StorageLocation{Bucket: "defs", Key: "api.json"}
	if got := loc.String(); got != "s3://defs/api.json" {
		t.Errorf("String() = %s", got)
	}

	loc.Version = "3"
	if got := loc.String(); got != "s3://defs/api.json?versionId=3" {
		t.Errorf("String() = %s", got)
	}

	if !(StorageLocation{}).IsZero() {
		t.Error("expected empty location to be zero")
	}
}

func TestSuccessReport(t *testing.T) {
	req := &Request{
		Command:            CommandUpdate,
		RequestID:          "req-1",
		StackID:            "stack",
		LogicalResourceID:  "OrdersApi",
		PhysicalResourceID: "old-id",
		ResponseURL:        "https://example.com/cb",
	}

	r := SuccessReport(req, &apigateway.RemoteAPI{ID: "a1", Name: "orders"})
	if r.Status != StatusSuccess {
		t.Errorf("expected SUCCESS, got %s", r.Status)
	}
	if r.PhysicalResourceID != "a1" {
		t.Errorf("expected resulting API id as physical id, got %s", r.PhysicalResourceID)
	}
	if r.Data["id"] != "a1" || r.Data["name"] != "orders" {
		t.Errorf("unexpected data: %v", r.Data)
	}
	if r.RequestID != "req-1" || r.ResponseURL != "https://example.com/cb" {
		t.Errorf("routing fields not echoed: %+v", r)
	}

	r = SuccessReport(req, nil)
	if r.PhysicalResourceID != "old-id" || len(r.Data) != 0 {
		t.Errorf("expected inbound physical id and empty data, got %+v", r)
	}
}

func TestFailedReport(t *testing.T) {
	req := &Request{Command: CommandDelete, PhysicalResourceID: "a1"}

	r := FailedReport(req, errors.New("throttled"))
	if r.Status != StatusFailed {
		t.Errorf("expected FAILED, got %s", r.Status)
	}
	if r.PhysicalResourceID != "a1" {
		t.Errorf("expected inbound physical id, got %s", r.PhysicalResourceID)
	}
	if len(r.Data) != 0 {
		t.Errorf("expected empty payload, got %v", r.Data)
	}
	if r.Reason != "throttled" {
		t.Errorf("unexpected reason %q", r.Reason)
	}
	if r.Invalid {
		t.Error("remote failure reported as invalid request")
	}

	r = FailedReport(req, apigateway.NewValidationError("validate request", ErrPropertiesRequired))
	if !r.Invalid {
		t.Error("expected validation failure to mark the report invalid")
	}
}

func TestArtifact_Cleanup(t *testing.T) {
	dir := t.TempDir()
	work := filepath.Join(dir, "definition-1")
	if err := os.MkdirAll(work, 0o755); err != nil {
		t.Fatal(err)
	}

	a := &Artifact{Dir: work, Path: filepath.Join(work, "api.json")}
	if err := a.Cleanup(); err != nil {
		t.Fatalf("Cleanup() error = %v", err)
	}
	if _, err := os.Stat(work); !os.IsNotExist(err) {
		t.Errorf("expected %s to be removed", work)
	}

	var nilArtifact *Artifact
	if err := nilArtifact.Cleanup(); err != nil {
		t.Errorf("Cleanup() on nil artifact = %v", err)
	}
}

func TestDecision_String(t *testing.T) {
	if DecisionSkip.String() != "skip" || DecisionUpdate.String() != "update" {
		t.Errorf("unexpected decision names %s/%s", DecisionSkip, DecisionUpdate)
	}
}
