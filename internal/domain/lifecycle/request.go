package lifecycle

// Command is the orchestrator lifecycle command.
type Command string

const (
	CommandCreate Command = "Create"
	CommandUpdate Command = "Update"
	CommandDelete Command = "Delete"
)

// Valid reports whether c is a known command.
func (c Command) Valid() bool {
	switch c {
	case CommandCreate, CommandUpdate, CommandDelete:
		return true
	}
	return false
}

// Request is one lifecycle invocation.
type Request struct {
	Command Command

	// Routing fields echoed back on the report.
	RequestID          string
	StackID            string
	LogicalResourceID  string
	PhysicalResourceID string
	ResponseURL        string

	Current *Definition
	// Previous is set on Update and Delete; it may be nil or empty.
	Previous *Definition
}

// Validate checks the request before any remote call is attempted.
func (r *Request) Validate() error {
	if !r.Command.Valid() {
		return ErrInvalidCommand
	}
	if r.Current == nil {
		return ErrPropertiesRequired
	}
	return r.Current.Location.Validate()
}
