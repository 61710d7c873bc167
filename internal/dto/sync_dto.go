package dto

import "github.com/google/uuid"

type ImportRequest struct {
	// Source is the backup file path: absolute, or relative to the
	// configured backup directory.
	Source         string `json:"source" validate:"required"`
	Policy         string `json:"policy" validate:"required"`
	IncludePrivate bool   `json:"includePrivate"`
	Password       string `json:"password,omitempty"`
}

type ExportRequest struct {
	Destination    string `json:"destination" validate:"required"`
	IncludePrivate bool   `json:"includePrivate"`
}

type JobResponse struct {
	JobId uuid.UUID `json:"jobId"`
}

type JobStatusResponse struct {
	JobId    uuid.UUID `json:"jobId"`
	Name     string    `json:"name"`
	State    string    `json:"state"` // running | success | rejected | error
	Message  string    `json:"message,omitempty"`
	Stage    string    `json:"stage,omitempty"`
	Done     int       `json:"done"`
	Total    int       `json:"total"`
	Imported int       `json:"imported"`
}
