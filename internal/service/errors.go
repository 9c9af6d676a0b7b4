package service

import "errors"

// Admission and submission failures. All are expected, user-facing and
// non-retryable; handlers map each to a distinct HTTP response.
var (
	ErrExamNotFound             = errors.New("exam not found")
	ErrInvalidExamConfiguration = errors.New("exam schedule is invalid or missing")
	ErrAlreadySubmitted         = errors.New("responses already submitted for this exam")
	ErrExamNotActive            = errors.New("exam is not currently active")
	ErrDeadlinePassed           = errors.New("submission deadline has passed")
	ErrNoValidAnswers           = errors.New("no valid answers found in the submission")
)

// Evaluation failures. ErrOracleUnavailable is surfaced only after the retry
// budget is exhausted; the others are never retried.
var (
	ErrResponseNotFound      = errors.New("student response not found")
	ErrAlreadyEvaluated      = errors.New("response has already been evaluated")
	ErrOracleUnavailable     = errors.New("evaluation oracle unavailable")
	ErrContentBlocked        = errors.New("evaluation blocked by oracle content policy")
	ErrMalformedOracleOutput = errors.New("malformed oracle output")
)

// Authoring and account failures.
var (
	ErrQuestionNotFound       = errors.New("question not found")
	ErrInvalidQuestionShape   = errors.New("question fields do not match its type")
	ErrUserNotFound           = errors.New("user not found")
	ErrEmailAlreadyRegistered = errors.New("email is already registered")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrAccountNotVerified     = errors.New("account is awaiting admin verification")
	ErrForbidden              = errors.New("forbidden")
)
