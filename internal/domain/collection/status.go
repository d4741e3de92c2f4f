package collection

import "time"

// State is the indexing lifecycle state of a collection.
type State string

// Indexing states.
const (
	StateIdle     State = "idle"
	StateIndexing State = "indexing"
	StateDone     State = "done"
	StateFailed   State = "failed"
)

// Status is a point-in-time snapshot of a collection's indexing progress.
type Status struct {
	Collection      string    `json:"collection"`
	State           State     `json:"state"`
	Indexed         int       `json:"indexed"`
	Skipped         int       `json:"skipped"`
	FailedDocuments int       `json:"failed_documents"`
	StartedAt       time.Time `json:"started_at,omitzero"`
	FinishedAt      time.Time `json:"finished_at,omitzero"`
	Error           string    `json:"error,omitempty"`
}

// Running reports whether indexing is in progress.
func (s Status) Running() bool { return s.State == StateIndexing }
