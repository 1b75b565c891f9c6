package handlers

import (
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/amritsagoo91/phonebook-demo/phonebook"
)

func init() { //nolint: gochecknoinits // huma reads the error constructor at registration
	huma.NewError = NewError
}

// ErrorModel is the body of every error response: {"error": "..."}.
type ErrorModel struct {
	status int
	cause  error

	Message string   `json:"error"             doc:"Description of the failure"`
	Details []string `json:"details,omitempty" doc:"Request validation failures"`
}

func (e *ErrorModel) Error() string { return e.Message }
func (e *ErrorModel) GetStatus() int { return e.status }
func (e *ErrorModel) Unwrap() error { return e.cause }

// NewError replaces [huma.NewError]. Schema validation failures are reported
// as 400 like every other invalid input. Only [huma.ErrorDetailer] errors are
// exposed to the client; other causes stay in the logs.
func NewError(status int, msg string, errs ...error) huma.StatusError {
	if status == http.StatusUnprocessableEntity {
		status = http.StatusBadRequest
	}
	e := &ErrorModel{status: status, cause: errors.Join(errs...), Message: msg}
	for _, err := range errs {
		var detailer huma.ErrorDetailer
		if errors.As(err, &detailer) {
			e.Details = append(e.Details, detailer.ErrorDetail().Error())
		}
	}
	return e
}

// serviceError converts a [phonebook.Error] to its HTTP status error.
// Other errors are returned as is and become a 500 without details.
func serviceError(err error) error {
	var pe *phonebook.Error
	if !errors.As(err, &pe) {
		return err
	}
	switch pe.Kind {
	case phonebook.KindBadRequest, phonebook.KindMalformedID:
		return huma.Error400BadRequest(pe.Message, err)
	case phonebook.KindNotFound:
		return huma.Error404NotFound(pe.Message, err)
	case phonebook.KindConflict:
		return huma.Error409Conflict(pe.Message, err)
	default:
		return err
	}
}
