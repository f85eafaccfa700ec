package judgepad

import "fmt"

// APIError is returned when the API responds with a non-success status.
// BackendStatus and BackendBody are set when the failure came from the
// execution backend.
type APIError struct {
	StatusCode    int
	Message       string
	BackendStatus int
	BackendBody   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("judgepad: HTTP %d: %s", e.StatusCode, e.Message)
}
