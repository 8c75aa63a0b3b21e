package models

// ResultState distinguishes a populated result set from an empty one and
// from a pending recomputation.
type ResultState string

const (
	StateLoading ResultState = "loading"
	StateReady   ResultState = "ready"
	StateNoMatch ResultState = "no_match"
)

// Result is one derived result set for a filter tuple.
type Result struct {
	State         ResultState `json:"state"`
	Mode          ViewMode    `json:"mode"`
	Cards         []Card      `json:"cards"`
	LocalCount    int         `json:"localCount"`
	ExternalCount int         `json:"externalCount"`
	ClearFilters  bool        `json:"clearFilters"`
	Filters       Filters     `json:"filters"`
}

// SessionEvent is pushed to search session clients.
type SessionEvent struct {
	Type       string  `json:"type"`
	Generation uint64  `json:"generation,omitempty"`
	Result     *Result `json:"result,omitempty"`
	Cards      []Card  `json:"cards,omitempty"`
	Query      string  `json:"query,omitempty"`
	Error      string  `json:"error,omitempty"`
	Retryable  bool    `json:"retryable,omitempty"`
}

// Session event types.
const (
	EventLoading  = "loading"
	EventResults  = "results"
	EventExternal = "external"
	EventError    = "error"
)
