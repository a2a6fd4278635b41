package service

import (
	"errors"
	"fmt"
)

// Kind classifies a failure by how the caller should react to it.
type Kind int

const (
	KindDependency Kind = iota
	KindValidation
	KindAuth
	KindForbidden
	KindNotFound
	KindConflict
	KindRateLimited
	KindInvariant
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindRateLimited:
		return "rate_limited"
	case KindInvariant:
		return "invariant"
	}
	return "dependency"
}

// Error carries a client-safe code and message. Err holds the cause for logs.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code, so detailed copies of a sentinel
// still satisfy errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func newError(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// withMessage returns a copy of sentinel with a more specific message.
func withMessage(sentinel *Error, msg string) *Error {
	return &Error{Kind: sentinel.Kind, Code: sentinel.Code, Message: msg}
}

// dependency wraps a storage or upstream failure.
func dependency(msg string, err error) *Error {
	return &Error{Kind: KindDependency, Code: "internal_error", Message: msg, Err: err}
}

var (
	ErrNotFound         = newError(KindNotFound, "not_found", "not found")
	ErrVideoNotFound    = newError(KindNotFound, "video_not_found", "video not found")
	ErrProfileNotFound  = newError(KindNotFound, "profile_not_found", "profile not found")
	ErrSessionNotFound  = newError(KindNotFound, "session_not_found", "ad session not found")
	ErrPayoutNotFound   = newError(KindNotFound, "payout_not_found", "payout request not found")
	ErrUnauthenticated  = newError(KindAuth, "unauthorized", "authentication required")
	ErrForbidden        = newError(KindForbidden, "forbidden", "forbidden")
	ErrEmailUnverified  = newError(KindForbidden, "email_unverified", "email address must be verified")
	ErrNotCreator       = newError(KindForbidden, "not_creator", "creator status required")
	ErrVideoIDRequired  = newError(KindValidation, "video_id_required", "video_id required")
	ErrInvalidInput     = newError(KindValidation, "bad_request", "invalid request")
	ErrBelowMinimum     = newError(KindValidation, "below_minimum", "amount is below the minimum payout")
	ErrInvalidAddress   = newError(KindValidation, "invalid_payout_address", "invalid payout address")
	ErrInvalidProof     = newError(KindValidation, "invalid_proof", "invalid or expired proof token")
	ErrUnsupportedMedia = newError(KindValidation, "unsupported_media", "unsupported media type")
	ErrFileTooLarge     = newError(KindValidation, "file_too_large", "file exceeds the size limit")
	ErrRateLimited      = newError(KindRateLimited, "rate_limited", "rate limit")
	ErrInsufficientFund = newError(KindConflict, "insufficient_balance", "insufficient balance")
	ErrPendingPayout    = newError(KindConflict, "pending_payout", "a payout request is already pending")
	ErrPayoutFinalized  = newError(KindConflict, "payout_finalized", "payout request is already resolved")
	ErrInvalidEvent     = newError(KindConflict, "invalid_transition", "event not allowed in the current session state")
	ErrAdNotWatched     = newError(KindConflict, "ad_not_watched", "ad was not shown long enough")
	ErrDurationRange    = newError(KindInvariant, "duration_out_of_range", "video duration is outside the allowed range")
)

// KindOf reports the kind of err. Errors that are not *Error are dependency failures.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindDependency
}
