package usecase

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	ErrorInvalidInput ErrorCode = "INVALID_INPUT"
	ErrorRateLimited  ErrorCode = "RATE_LIMITED"
	ErrorUpstream     ErrorCode = "UPSTREAM_ERROR"
	ErrorInternal     ErrorCode = "INTERNAL_ERROR"
)

// Reasons attached to Error.Reason.
const (
	ReasonEmptyText               = "empty_text"
	ReasonTextTooLong             = "text_too_long"
	ReasonIntentRateLimited       = "intent_rate_limited"
	ReasonIntentError             = "intent_error"
	ReasonIntentMalformedResponse = "intent_malformed_response"
	ReasonAgentRateLimited        = "agent_rate_limited"
	ReasonAgentError              = "agent_error"
	ReasonToolArgumentsInvalid    = "tool_arguments_invalid"
	ReasonStoreInsertError        = "store_insert_error"
	ReasonStoreFetchError         = "store_fetch_error"
	ReasonStoreListError          = "store_list_error"
)

type Error struct {
	Code   ErrorCode
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("usecase: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("usecase: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code ErrorCode, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or
// ErrorInternal when there is none.
func CodeOf(err error) ErrorCode {
	var ue *Error
	if errors.As(err, &ue) {
		return ue.Code
	}
	return ErrorInternal
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

// upstreamError classifies an LLM failure as rate limited or generic.
func upstreamError(rateLimitedReason, reason string, err error) *Error {
	if status, ok := upstreamStatusCode(err); ok && status == 429 {
		return newError(ErrorRateLimited, rateLimitedReason, err)
	}
	return newError(ErrorUpstream, reason, err)
}
