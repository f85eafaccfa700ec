package code

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrEmptySource is returned before any network call when the source is
	// empty or whitespace only.
	ErrEmptySource = errors.New("source code can't be empty")

	// ErrAuxiliaryAssetUnavailable is returned when a language needs the
	// additional files blob and it could not be loaded.
	ErrAuxiliaryAssetUnavailable = errors.New("auxiliary asset unavailable")

	// ErrPollBudgetExhausted is wrapped by the 504 DispatchError returned
	// when the submission is still running after the last allowed poll.
	ErrPollBudgetExhausted = errors.New("maximum number of probe requests reached")
)

// DispatchError is a failed round trip to the backend. HTTPStatus is 0 for
// transport failures, in which case Body holds the transport error text.
type DispatchError struct {
	HTTPStatus int
	Body       string
	Err        error
}

func (e *DispatchError) Error() string {
	if e.HTTPStatus == 0 {
		return fmt.Sprintf("judge0 unreachable: %s", e.Body)
	}
	return fmt.Sprintf("judge0 returned HTTP %d: %s", e.HTTPStatus, e.Body)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// StatusText is the reason phrase reported to the host page.
func (e *DispatchError) StatusText() string {
	if errors.Is(e.Err, ErrPollBudgetExhausted) {
		return "Maximum number of probe requests reached."
	}
	if e.HTTPStatus == 0 {
		return "error"
	}
	return http.StatusText(e.HTTPStatus)
}

func pollBudgetExhausted() *DispatchError {
	return &DispatchError{
		HTTPStatus: http.StatusGatewayTimeout,
		Body:       "Maximum number of probe requests reached.",
		Err:        ErrPollBudgetExhausted,
	}
}
