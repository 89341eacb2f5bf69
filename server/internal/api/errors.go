package api

import (
	"errors"
	"net/http"

	"github.com/trovedash/console/server/internal/cluster"
	"github.com/trovedash/console/server/internal/form"
	"github.com/trovedash/console/server/internal/instance"
	"github.com/trovedash/console/server/internal/notice"
	"github.com/trovedash/console/server/internal/trove"
)

const (
	errInvalidInput       = "invalid_input"
	errNotFound           = "not_found"
	errUnauthorized       = "unauthorized"
	errServiceUnavailable = "service_unavailable"
	errServerError        = "server_error"
)

var errInvalidBody = errors.New("request body is not valid JSON")

type APIError struct {
	Name    string          `json:"name"`
	Message string          `json:"message"`
	Fields  form.Errors     `json:"fields,omitempty"`
	Notices []notice.Notice `json:"notices,omitempty"`
}

func newAPIError(name, message string) *APIError {
	return &APIError{
		Name:    name,
		Message: message,
	}
}

// apiErr maps an error to its response status and body.
func apiErr(err error) (int, *APIError) {
	var fieldErrs form.Errors
	switch {
	case errors.As(err, &fieldErrs):
		e := newAPIError(errInvalidInput, "invalid input")
		e.Fields = fieldErrs
		return http.StatusBadRequest, e
	case errors.Is(err, errInvalidBody),
		errors.Is(err, cluster.ErrNoPendingInstances),
		errors.Is(err, cluster.ErrNoInstancesSelected),
		errors.Is(err, instance.ErrNotReplica):
		return http.StatusBadRequest, newAPIError(errInvalidInput, err.Error())
	case errors.Is(err, trove.ErrNotFound):
		return http.StatusNotFound, newAPIError(errNotFound, err.Error())
	case errors.Is(err, trove.ErrUnauthorized):
		return http.StatusForbidden, newAPIError(errUnauthorized, err.Error())
	case errors.Is(err, trove.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, newAPIError(errServiceUnavailable, err.Error())
	default:
		return http.StatusInternalServerError, newAPIError(errServerError, err.Error())
	}
}
