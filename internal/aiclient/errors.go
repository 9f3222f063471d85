package aiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorKind classifies a failed AI API call.
type ErrorKind string

const (
	KindRateLimited ErrorKind = "rate_limited"
	KindServerError ErrorKind = "server_error"
	KindUnreachable ErrorKind = "unreachable"
	KindGeneric     ErrorKind = "generic"
)

// RemoteServiceError reports a failed AI API call. Every kind is retryable.
type RemoteServiceError struct {
	Kind       ErrorKind
	StatusCode int    // zero when the service was unreachable
	Message    string // message returned by the service, if any
	Err        error
}

func (e *RemoteServiceError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("ai api %s (%d): %s", e.Kind, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("ai api %s (%d)", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("ai api %s: %v", e.Kind, e.Err)
	}
	return "ai api " + string(e.Kind)
}

func (e *RemoteServiceError) Unwrap() error { return e.Err }

// UserMessage is the text shown to the user for this failure.
func (e *RemoteServiceError) UserMessage() string {
	switch e.Kind {
	case KindRateLimited:
		return "Please wait about 30 seconds before trying again: rate limit reached."
	case KindServerError:
		return "The AI service encountered an error. Please try again in a moment."
	case KindUnreachable:
		return "Can't reach the server. Please check your connection."
	}
	return "Sorry, something went wrong. Please try again."
}

// AsRemoteServiceError unwraps err into a RemoteServiceError.
func AsRemoteServiceError(err error) (*RemoteServiceError, bool) {
	var re *RemoteServiceError
	ok := errors.As(err, &re)
	return re, ok
}

// KindForStatus maps a non-2xx HTTP status to an ErrorKind.
func KindForStatus(code int) ErrorKind {
	switch code {
	case http.StatusTooManyRequests:
		return KindRateLimited
	case http.StatusInternalServerError:
		return KindServerError
	}
	return KindGeneric
}

func statusError(code int, body []byte) *RemoteServiceError {
	return &RemoteServiceError{
		Kind:       KindForStatus(code),
		StatusCode: code,
		Message:    serverMessage(body),
	}
}

func unreachable(err error) *RemoteServiceError {
	return &RemoteServiceError{Kind: KindUnreachable, Err: err}
}

// serverMessage extracts {"message": ...} or {"error": ...} from an error body.
func serverMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
