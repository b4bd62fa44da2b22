package lifecycle

// Decision is the change detector's verdict for Create and Update.
type Decision int

const (
	DecisionUpdate Decision = iota
	DecisionSkip
)

func (d Decision) String() string {
	if d == DecisionSkip {
		return "skip"
	}
	return "update"
}
