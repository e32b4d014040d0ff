package sdk

import "fmt"

// APIError is a non-2xx reply from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hirelens: %s (%s, HTTP %d)", e.Message, e.Code, e.StatusCode)
}

// IsValidation reports whether the error is a request validation failure.
func (e *APIError) IsValidation() bool { return e.Code == "bad_request" }
