package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed request.
type Kind string

const (
	// KindNetwork means no HTTP response was received.
	KindNetwork Kind = "network"
	// KindStatus means the server answered with a non-2xx status.
	KindStatus Kind = "status"
	// KindMalformed means the response body could not be decoded.
	KindMalformed Kind = "malformed"
)

// Sentinels for errors.Is.
var (
	ErrNetwork   = errors.New("api: network error")
	ErrStatus    = errors.New("api: unexpected status")
	ErrMalformed = errors.New("api: malformed response")
)

// Error is returned by every Client method.
type Error struct {
	Kind     Kind
	Endpoint string
	Status   int    // HTTP status, 0 unless Kind is KindStatus
	Detail   string // server supplied detail, if any
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		if e.Detail != "" {
			return fmt.Sprintf("%s: %d %s", e.Endpoint, e.Status, e.Detail)
		}
		return fmt.Sprintf("%s: %d %s", e.Endpoint, e.Status, http.StatusText(e.Status))
	case KindMalformed:
		return fmt.Sprintf("%s: malformed response: %v", e.Endpoint, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel of the error's kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrStatus:
		return e.Kind == KindStatus
	case ErrMalformed:
		return e.Kind == KindMalformed
	}
	return false
}

// Message returns the text shown to users: the server detail when present,
// otherwise a short description of the failure.
func Message(err error) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		if err == nil {
			return ""
		}
		return err.Error()
	}
	switch apiErr.Kind {
	case KindStatus:
		if apiErr.Detail != "" {
			return apiErr.Detail
		}
		return fmt.Sprintf("server returned %d %s", apiErr.Status, http.StatusText(apiErr.Status))
	case KindMalformed:
		return "server sent an unreadable response"
	default:
		return fmt.Sprintf("cannot reach server: %v", apiErr.Err)
	}
}

func statusError(endpoint string, status int, body []byte) *Error {
	return &Error{
		Kind:     KindStatus,
		Endpoint: endpoint,
		Status:   status,
		Detail:   parseDetail(body),
		Err:      ErrStatus,
	}
}

// parseDetail extracts {"detail": ...}. A non-string detail, such as a
// validation error list, is returned as compact JSON.
func parseDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return strings.TrimSpace(s)
	}
	if string(payload.Detail) == "null" {
		return ""
	}
	return string(payload.Detail)
}
