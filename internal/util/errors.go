package util

import "errors"

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailRegistered  = errors.New("email already registered")
	ErrPermissionDenied = errors.New("permission denied")

	ErrQuizNotFound     = errors.New("quiz not found")
	ErrQuizNotPublished = errors.New("quiz not published")

	ErrTokenNotFound     = errors.New("test token not found")
	ErrTokenExpired      = errors.New("test token expired")
	ErrTokenAlreadyUsed  = errors.New("test token already used or cancelled")
	ErrTokenForbidden    = errors.New("test token assigned to a different student")
	ErrInvalidTokenState = errors.New("test token not in a valid state for this operation")

	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptLimitExceeded    = errors.New("attempt limit reached for this quiz")
	ErrAttemptAlreadySubmitted = errors.New("attempt already submitted")
	ErrAttemptForbidden        = errors.New("attempt belongs to a different student")
	ErrAttemptNotCompleted     = errors.New("attempt has not been submitted yet")
	ErrAnswerNotFound          = errors.New("answer not found on this attempt")

	ErrNoPendingRequests   = errors.New("no pending requests to assign")
	ErrNoEligibleStaff     = errors.New("no eligible staff available for assignment")
	ErrRequestNotFound     = errors.New("request not found")
	ErrInvalidRequestState = errors.New("request not in a valid state for this operation")

	ErrStaffNotFound = errors.New("staff member not found")
	ErrStaffInactive = errors.New("staff member is not active")
)
