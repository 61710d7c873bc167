package dto

import "github.com/google/uuid"

// ProgressEvent is published for every reconciliation step and broadcast
// to websocket subscribers.
type ProgressEvent struct {
	JobId uuid.UUID `json:"jobId"`
	Stage string    `json:"stage"`
	Done  int       `json:"done"`
	Total int       `json:"total"`
}

// CompletionEvent is published once per job.
type CompletionEvent struct {
	JobId    uuid.UUID `json:"jobId"`
	State    string    `json:"state"` // success | rejected | error
	Message  string    `json:"message,omitempty"`
	Imported int       `json:"imported"`
}
