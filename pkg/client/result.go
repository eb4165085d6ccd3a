package client

// Outcome is the successful result of a fetch.
type Outcome int

const (
	// OutcomeFound means the upstream answered 2xx.
	OutcomeFound Outcome = iota + 1

	// OutcomeNotFound means the upstream answered 404. It is terminal and cacheable.
	OutcomeNotFound
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case OutcomeFound:
		return "found"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Result is what Fetch returns when the upstream gave a definitive answer.
type Result struct {
	Outcome    Outcome
	StatusCode int
	Body       []byte
	Attempts   int
}

// Found reports whether the upstream answered 2xx.
func (r Result) Found() bool {
	return r.Outcome == OutcomeFound
}
