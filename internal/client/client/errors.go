package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnavailable       = errors.New("backend unavailable")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrNotFound          = errors.New("not found")
	ErrNoSession         = errors.New("no active session")
	ErrAlreadySubscribed = errors.New("auth listener already registered")
	ErrSessionRevoked    = errors.New("session revoked")
)

// codeNoRows is returned when a single-object request matched zero rows.
const codeNoRows = "PGRST116"

// APIError is a non-2xx answer from the backend. Message is the backend's
// human-readable text and is suitable for showing to the user.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (status %d, code %s)", e.Message, e.Status, e.Code)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Code == codeNoRows:
		return ErrNotFound
	case e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden:
		return ErrUnauthorized
	case e.Status >= http.StatusInternalServerError:
		return ErrUnavailable
	default:
		return nil
	}
}

// errorBody covers both the auth service shape
// ({"error","error_description"} or {"msg","error_code"}) and the REST
// shape ({"code","message","details","hint"}).
type errorBody struct {
	Error            string          `json:"error"`
	ErrorDescription string          `json:"error_description"`
	ErrorCode        string          `json:"error_code"`
	Msg              string          `json:"msg"`
	Message          string          `json:"message"`
	Code             json.RawMessage `json:"code"`
	Details          *string         `json:"details"`
}

func decodeAPIError(status int, body []byte) *APIError {
	e := &APIError{Status: status}

	var b errorBody
	if err := json.Unmarshal(body, &b); err != nil {
		e.Message = strings.TrimSpace(string(body))
		if e.Message == "" {
			e.Message = http.StatusText(status)
		}
		return e
	}

	for _, m := range []string{b.ErrorDescription, b.Msg, b.Message, b.Error} {
		if m != "" {
			e.Message = m
			break
		}
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}

	e.Code = b.ErrorCode
	if e.Code == "" && len(b.Code) > 0 {
		var s string
		if err := json.Unmarshal(b.Code, &s); err == nil {
			e.Code = s
		}
	}
	if e.Code == "" {
		e.Code = b.Error
	}

	return e
}

// rejected reports whether the backend answered and refused the request
// itself. Transport failures and 5xx answers are not rejections.
func rejected(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) &&
		apiErr.Status >= http.StatusBadRequest && apiErr.Status < http.StatusInternalServerError
}

// mapTransportError marks failures that never reached the backend.
func mapTransportError(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
