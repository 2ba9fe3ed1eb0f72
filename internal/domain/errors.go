package domain

import (
	"errors"
	"fmt"
)

// NotFoundError represents a missing resource.
type NotFoundError struct {
	Resource string
}

func (e NotFoundError) Error() string {
	if e.Resource == "" {
		return "not found"
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is enables errors.Is matching on NotFoundError.
func (e NotFoundError) Is(target error) bool {
	_, ok := target.(NotFoundError)
	if ok {
		return true
	}
	_, ok = target.(*NotFoundError)
	return ok
}

// ErrNotFound is the sentinel error for missing resources.
var ErrNotFound = NotFoundError{}

// ValidationError represents caller-supplied input that violates a domain
// constraint. Never retried, surfaced with its reason.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	if e.Reason == "" {
		return "invalid input"
	}
	return e.Reason
}

// Is enables errors.Is matching on ValidationError.
func (e ValidationError) Is(target error) bool {
	_, ok := target.(ValidationError)
	if ok {
		return true
	}
	_, ok = target.(*ValidationError)
	return ok
}

// ErrInvalid is the sentinel error for validation failures.
var ErrInvalid = ValidationError{}

// VerificationError represents a failure reported by the credential verifier.
// The message is safe to show the caller; internal detail stays in the log.
type VerificationError struct {
	Message string
}

func (e VerificationError) Error() string {
	if e.Message == "" {
		return "credential verification failed"
	}
	return e.Message
}

// Is enables errors.Is matching on VerificationError.
func (e VerificationError) Is(target error) bool {
	_, ok := target.(VerificationError)
	if ok {
		return true
	}
	_, ok = target.(*VerificationError)
	return ok
}

// ErrVerification is the sentinel error for verifier rejections.
var ErrVerification = VerificationError{}

var (
	// ErrIdentifierNotRecognized means an actor identifier is neither an
	// @username nor an ID token.
	ErrIdentifierNotRecognized = errors.New("identifier format not recognized")

	// ErrMissingCeremonyState means a complete* call arrived without a
	// pending challenge. The caller must restart the ceremony.
	ErrMissingCeremonyState = errors.New("no pending ceremony state, restart the ceremony from the options step")

	// ErrDuplicateCredential means a credential descriptor is already bound
	// somewhere in the system.
	ErrDuplicateCredential = errors.New("credential is already registered")

	// ErrUnsupportedActivity rejects inbox activity types other than Like.
	ErrUnsupportedActivity = errors.New("activity type is not supported")

	// ErrSelfLike rejects a federated like whose actor lives on this node.
	ErrSelfLike = errors.New("actor of like is on this instance, activity is nonsensical")

	// ErrForeignTarget rejects a like of an object not owned by this node.
	ErrForeignTarget = errors.New("target of like is not an object on this instance")

	// ErrActorResolution means the remote actor profile could not be fetched
	// or parsed.
	ErrActorResolution = errors.New("could not resolve activity actor")

	// ErrProcessingFailed is the internal-error class for the inbox pipeline.
	ErrProcessingFailed = errors.New("failed to process activity")
)
