package predict

import (
	"errors"
	"fmt"
)

// StatusError is a non-2xx reply from a service.
type StatusError struct {
	Service    Service
	StatusCode int
	// Message is the service's "error" field when the body had one.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: HTTP %d: %s", e.Service, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: HTTP %d", e.Service, e.StatusCode)
}

// DecodeError is a 2xx reply whose body is not the expected JSON.
type DecodeError struct {
	Service Service
	Body    []byte
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: decode response: %v", e.Service, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ErrPredictionFailed is wrapped when the thyroid service answers with
// success=false.
var ErrPredictionFailed = errors.New("prediction failed")

// IsUnauthorized reports whether err is a 401 or 403 from any service.
func IsUnauthorized(err error) bool {
	var se *StatusError
	if !errors.As(err, &se) {
		return false
	}
	return se.StatusCode == 401 || se.StatusCode == 403
}
