package models

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
	// Notices are the notifications a failed mutation produced.
	Notices []Notice `json:"notices,omitempty"`
}
