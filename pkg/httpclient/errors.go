package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/utafrali/neighborly/pkg/errors"
)

// upstreamError accepts both the {"error":{...}} envelope used by our own
// services and the {"errors":[...]} list returned by the identity provider.
type upstreamError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Errors []struct {
		Code        string `json:"code"`
		Message     string `json:"message"`
		LongMessage string `json:"long_message"`
	} `json:"errors"`
}

func (u upstreamError) message() (string, bool) {
	if u.Error != nil {
		return u.Error.Message, true
	}
	if len(u.Errors) > 0 {
		if u.Errors[0].LongMessage != "" {
			return u.Errors[0].LongMessage, true
		}
		return u.Errors[0].Message, true
	}
	return "", false
}

// ParseResponseError consumes and closes a non-2xx response body and maps it
// to an AppError carrying the upstream message.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", upstream, resp.StatusCode, err)
	}

	msg := string(body)
	var parsed upstreamError
	if json.Unmarshal(body, &parsed) == nil {
		if m, ok := parsed.message(); ok {
			msg = m
		}
	}
	return mapStatus(resp.StatusCode, upstream, msg)
}

func mapStatus(status int, upstream, msg string) error {
	qualified := fmt.Sprintf("%s: %s", upstream, msg)

	switch {
	case status == http.StatusNotFound:
		return &apperrors.AppError{Code: "NOT_FOUND", Message: qualified, Status: status, Err: apperrors.ErrNotFound}
	case status == http.StatusBadRequest, status == http.StatusUnprocessableEntity:
		return apperrors.InvalidInput(qualified)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case status == http.StatusUnauthorized:
		return apperrors.Unauthorized(qualified)
	case status == http.StatusForbidden:
		return apperrors.Forbidden(qualified)
	case status == http.StatusTooManyRequests:
		return apperrors.RateLimited(qualified)
	case status >= 500:
		return apperrors.ServiceUnavailable(qualified)
	default:
		return &apperrors.AppError{Code: "UPSTREAM_ERROR", Message: qualified, Status: status}
	}
}
