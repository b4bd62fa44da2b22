package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apigw-resource/internal/domain/apigateway"
	"apigw-resource/internal/domain/lifecycle"
)

type fakeEvents struct {
	events  []*cfn.Event
	fail    bool
	invalid bool
}

func (f *fakeEvents) Handle(_ context.Context, event *cfn.Event) *lifecycle.Report {
	f.events = append(f.events, event)
	req := &lifecycle.Request{
		RequestID:          event.RequestID,
		LogicalResourceID:  event.LogicalResourceID,
		PhysicalResourceID: event.PhysicalResourceID,
	}
	if f.invalid {
		return lifecycle.FailedReport(req, apigateway.NewValidationError("map event", lifecycle.ErrPropertiesRequired))
	}
	if f.fail {
		return lifecycle.FailedReport(req, apigateway.NewImporterError("create", "", assert.AnError))
	}
	return lifecycle.SuccessReport(req, &apigateway.RemoteAPI{ID: "a1", Name: "orders"})
}

func newTestServer(events EventHandler, auth AuthConfig) *httptest.Server {
	s := NewServer(&ServerConfig{Version: "test", Auth: auth}, events, logr.Discard())
	return httptest.NewServer(s.Router())
}

func decode(t *testing.T, resp *http.Response) APIResponse {
	t.Helper()
	defer resp.Body.Close()
	var out APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(&fakeEvents{}, AuthConfig{})
	defer srv.Close()

	for _, path := range []string{"/health", "/api/v1/health"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("Content-Type"))
		out := decode(t, resp)
		assert.True(t, out.Success)
	}
}

func TestServer_Metrics(t *testing.T) {
	srv := newTestServer(&fakeEvents{}, AuthConfig{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

const createEvent = `{
  "RequestType": "Create",
  "RequestId": "req-1",
  "LogicalResourceId": "OrdersApi",
  "ResourceProperties": {"Definition": {"S3Bucket": "defs", "S3Key": "orders.yaml"}}
}`

func TestServer_EventsSuccess(t *testing.T) {
	events := &fakeEvents{}
	srv := newTestServer(events, AuthConfig{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/events", "application/json", strings.NewReader(createEvent))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	out := decode(t, resp)
	assert.True(t, out.Success)
	data, ok := out.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "SUCCESS", data["status"])
	assert.Equal(t, "a1", data["physicalResourceId"])

	require.Len(t, events.events, 1)
	assert.Equal(t, cfn.RequestCreate, events.events[0].RequestType)
	assert.Equal(t, "defs", events.events[0].ResourceProperties["Definition"].(map[string]interface{})["S3Bucket"])
}

func TestServer_EventsFailure(t *testing.T) {
	srv := newTestServer(&fakeEvents{fail: true}, AuthConfig{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/events", "application/json", strings.NewReader(createEvent))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	out := decode(t, resp)
	assert.False(t, out.Success)
	require.NotNil(t, out.Error)
	assert.Equal(t, "RECONCILE_FAILED", out.Error.Code)
}

func TestServer_EventsInvalidProperties(t *testing.T) {
	srv := newTestServer(&fakeEvents{invalid: true}, AuthConfig{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/v1/events", "application/json", strings.NewReader(createEvent))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	out := decode(t, resp)
	require.NotNil(t, out.Error)
	assert.Equal(t, "INVALID_EVENT", out.Error.Code)
	data, ok := out.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "FAILED", data["status"])
}

func TestServer_EventsBadRequest(t *testing.T) {
	events := &fakeEvents{}
	srv := newTestServer(events, AuthConfig{})
	defer srv.Close()

	for _, body := range []string{"not json", `{"RequestId": "x"}`} {
		resp, err := http.Post(srv.URL+"/api/v1/events", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}
	assert.Empty(t, events.events)
}

func TestServer_EventsAuth(t *testing.T) {
	srv := newTestServer(&fakeEvents{}, AuthConfig{Enabled: true, APIKeys: []string{"secret"}})
	defer srv.Close()

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{name: "missing key", want: http.StatusUnauthorized},
		{name: "wrong key", header: "X-API-Key", value: "nope", want: http.StatusUnauthorized},
		{name: "api key header", header: "X-API-Key", value: "secret", want: http.StatusOK},
		{name: "bearer token", header: "Authorization", value: "Bearer secret", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/events", strings.NewReader(createEvent))
			require.NoError(t, err)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}

			resp, err := http.DefaultClient.Do(req)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "health stays public")
}
