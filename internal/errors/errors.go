package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrEmailRegistered is returned when signing up with an email that already exists.
	ErrEmailRegistered = errors.New("Email already registered")
	// ErrUserLimitReached is returned when the registered user ceiling is hit.
	ErrUserLimitReached = errors.New("Maximum user limit reached")
	// ErrInvalidCredentials is returned for unknown email and wrong password alike.
	ErrInvalidCredentials = errors.New("Invalid email or password")
	// ErrSessionNotFound is returned when a chat session does not exist.
	ErrSessionNotFound = errors.New("Session not found")
	// ErrInvalidURL is returned when a job link cannot be parsed as an http(s) URL.
	ErrInvalidURL = errors.New("Invalid URL")
	// ErrMissingSkills is returned when an opportunity search carries no skills.
	ErrMissingSkills = errors.New("Skills are required")
	// ErrInvalidSearchType is returned for an unknown opportunity category.
	ErrInvalidSearchType = errors.New("searchType must be one of all, jobs, events, mentoring")
	// ErrInvalidUpload is returned when an upload is missing, not a PDF, or too large.
	ErrInvalidUpload = errors.New("Please upload a PDF file up to 10MB")
	// ErrExtractionFailed is returned when a document cannot be parsed.
	ErrExtractionFailed = errors.New("Could not extract text from the document")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Message: e.Message,
		Code:    e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
// Anything unrecognised becomes a generic 500 so internal detail never leaks.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrEmailRegistered):
		return NewHTTPError(http.StatusBadRequest, ErrEmailRegistered.Error(), "EMAIL_REGISTERED")
	case errors.Is(err, ErrUserLimitReached):
		return NewHTTPError(http.StatusBadRequest, ErrUserLimitReached.Error(), "USER_LIMIT_REACHED")
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrSessionNotFound):
		return NewHTTPError(http.StatusNotFound, ErrSessionNotFound.Error(), "SESSION_NOT_FOUND")
	case errors.Is(err, ErrInvalidURL):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidURL.Error(), "INVALID_URL")
	case errors.Is(err, ErrMissingSkills):
		return NewHTTPError(http.StatusBadRequest, ErrMissingSkills.Error(), "MISSING_SKILLS")
	case errors.Is(err, ErrInvalidSearchType):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidSearchType.Error(), "INVALID_SEARCH_TYPE")
	case errors.Is(err, ErrInvalidUpload):
		return NewHTTPError(http.StatusBadRequest, ErrInvalidUpload.Error(), "INVALID_UPLOAD")
	case errors.Is(err, ErrExtractionFailed):
		return NewHTTPError(http.StatusBadRequest, ErrExtractionFailed.Error(), "EXTRACTION_FAILED")
	default:
		return NewHTTPError(http.StatusInternalServerError, "Something went wrong!", "INTERNAL_ERROR")
	}
}
