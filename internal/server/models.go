package server

import "time"

// ErrorResponse is the JSON body returned for failed requests
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Database string `json:"database"`
}

// WorktreeResponse describes one worktree in API responses
type WorktreeResponse struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Branch   string `json:"branch"`
	Commit   string `json:"commit,omitempty"`
	IsMain   bool   `json:"is_main"`
	IsLocked bool   `json:"is_locked"`
}

// RefreshResponse reports the outcome of a refresh request
type RefreshResponse struct {
	Status     string    `json:"status"`
	FinishedAt time.Time `json:"finished_at"`
}
