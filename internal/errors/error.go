package errors

import "github.com/pkg/errors"

var (
	// input errors
	ErrMessageMissing = errors.New("message is missing")

	// drafting errors
	ErrDraftBlocked     = errors.New("draft not allowed on blocked record")
	ErrNoDraftGenerated = errors.New("no draft generated")

	// configuration errors
	ErrPolicyFileInvalid = errors.New("policy file is invalid")

	// collaborator errors
	ErrSourceUnavailable = errors.New("mail source unavailable")
	ErrPublisherClosed   = errors.New("publisher is closed")
)
