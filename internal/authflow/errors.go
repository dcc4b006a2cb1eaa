package authflow

// AbortReason is the login failure taxonomy. Every network or provider error
// is classified into one of these at its origin.
type AbortReason string

const (
	ReasonMissingCode         AbortReason = "missing_code"
	ReasonStateMismatch       AbortReason = "state_mismatch"
	ReasonInvalidGrant        AbortReason = "invalid_grant"
	ReasonExchangeFailed      AbortReason = "exchange_failed"
	ReasonExchangeUnreachable AbortReason = "exchange_unreachable"
	ReasonIdentityFetchFailed AbortReason = "identity_fetch_failed"
	ReasonMalformedIdentity   AbortReason = "malformed_identity"
	ReasonDuplicateCallback   AbortReason = "duplicate_callback"
)

// AbortError carries a user-safe message plus the wrapped internal cause.
// Raw provider payloads stay in the cause and are only ever logged.
type AbortError struct {
	Reason  AbortReason
	Message string
	cause   error
}

func (e *AbortError) Error() string {
	if e.cause != nil {
		return string(e.Reason) + ": " + e.cause.Error()
	}
	return string(e.Reason) + ": " + e.Message
}

func (e *AbortError) Unwrap() error {
	return e.cause
}

func abort(reason AbortReason, message string, cause error) *AbortError {
	return &AbortError{Reason: reason, Message: message, cause: cause}
}
