package drive

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/api/googleapi"
)

// ErrUnauthorized signals that the access token was rejected (HTTP 401).
// The upload coordinator reacts to it by clearing the shared token and
// running a re-acquisition sweep; match with errors.Is.
var ErrUnauthorized = errors.New("unauthorized")

// ConfigError reports a deployment misconfiguration, such as a missing or
// placeholder Drive folder id. Its message is meant to be shown to the
// operator verbatim.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

// RequestError reports a remote or transport failure that is neither an
// auth problem nor a misconfiguration.
type RequestError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// classifyResponse turns a non-2xx Drive response into one of the typed
// errors above. Classification rides on googleapi.CheckResponse so the
// Drive error payload is preserved in the chain.
func classifyResponse(op string, resp *http.Response) error {
	err := googleapi.CheckResponse(resp)
	if err == nil {
		return nil
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == 401 {
		return fmt.Errorf("%s: %w", op, ErrUnauthorized)
	}

	status := resp.StatusCode
	if gerr != nil {
		status = gerr.Code
	}
	return &RequestError{Op: op, StatusCode: status, Err: err}
}
