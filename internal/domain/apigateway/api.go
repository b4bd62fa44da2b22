package apigateway

// DefaultPageSize is the listing page size used when searching remote APIs.
const DefaultPageSize int32 = 100

// RemoteAPI represents a REST API deployed in API Gateway.
// Name is the reconciliation key; ID is assigned by the service.
type RemoteAPI struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Stage is a named deployment attached to exactly one RemoteAPI.
type Stage struct {
	Name        string
	ParentAPIID string
}

// APIPage is one page of the remote API listing.
type APIPage struct {
	Items []RemoteAPI
	// Position is the continuation cursor for the next page; empty when the
	// service did not return one.
	Position string
}

// Outcome is the terminal value of a lifecycle invocation.
type Outcome struct {
	ResultingAPI *RemoteAPI
	Success      bool
}

// IsOrphaned reports whether an API with the given stages is eligible for deletion.
func IsOrphaned(stages []Stage) bool {
	return len(stages) == 0
}

// Clone returns a copy of the API, or nil.
func (a *RemoteAPI) Clone() *RemoteAPI {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

// Validate checks the fields required to address the API remotely.
func (a *RemoteAPI) Validate() error {
	if a.Name == "" {
		return ErrInvalidName
	}
	if a.ID == "" {
		return ErrInvalidID
	}
	return nil
}
