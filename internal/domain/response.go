package domain

import (
	"encoding/json"
	"net/http"
)

// Response is the outcome of dispatching one webhook event.
type Response struct {
	StatusCode int
	Body       string
}

// JSONResponse serialises v as the body of a response with the given status.
func JSONResponse(status int, v any) (Response, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Response{}, err
	}
	return Response{StatusCode: status, Body: string(b)}, nil
}

// IsJSON reports whether the body holds a JSON value.
func (r Response) IsJSON() bool {
	return r.Body != "" && json.Valid([]byte(r.Body))
}

// StatusCategory represents the coarse classification of an HTTP-like status code.
type StatusCategory int

const (
	StatusCategoryUnknown StatusCategory = iota
	StatusCategorySuccess
	StatusCategoryClientError
	StatusCategoryServerError
)

// StatusCategory returns the category of the response's StatusCode.
// A zero status is treated as success.
func (r Response) StatusCategory() StatusCategory {
	code := r.StatusCode

	if code == 0 {
		return StatusCategorySuccess
	}

	switch {
	case code >= 200 && code <= 299:
		return StatusCategorySuccess
	case code >= 400 && code <= 499:
		return StatusCategoryClientError
	case code >= 500 && code <= 599:
		return StatusCategoryServerError
	default:
		return StatusCategoryUnknown
	}
}

// IsRetriable returns true when redelivering the event may succeed later,
// e.g. a 503 for missing credentials that get configured afterwards.
func (r Response) IsRetriable() bool {
	return r.StatusCategory() == StatusCategoryServerError
}

// ShouldAcknowledge returns true when the event is finished with, successfully
// or with a non-retriable client error.
func (r Response) ShouldAcknowledge() bool {
	switch r.StatusCategory() {
	case StatusCategorySuccess, StatusCategoryClientError:
		return true
	default:
		return false
	}
}

// ConfigErrorResponse is returned when the index credentials are missing.
func ConfigErrorResponse() Response {
	return Response{
		StatusCode: http.StatusServiceUnavailable,
		Body:       "Either the application ID or admin API key is undefined, please check your configuration.",
	}
}

// NoopResponse is returned for events the dispatcher does not handle.
func NoopResponse() Response {
	return Response{
		StatusCode: http.StatusOK,
		Body:       "Nothing happened, might be an unwanted webhook event...",
	}
}
