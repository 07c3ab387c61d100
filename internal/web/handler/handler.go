// Package handler holds constants and interfaces shared by the web handlers.
package handler

const (
	// RootPath is the root path of the route group.
	RootPath = "/"

	// APIPath is the base path for the JSON API.
	APIPath = "/api/v1"

	// ErrNilACDFatalLogMsg is used if app or cfg or db var pointer is nil.
	ErrNilACDFatalLogMsg = "app, cfg or db is nil"

	// LocalCurrentUser is the fiber locals key carrying the authenticated user.
	LocalCurrentUser = "CurrentUser"
)

// ErrorResponse is the JSON error envelope returned by the API.
type ErrorResponse struct {
	Error string `json:"error"`
}
