package syncerr

import (
	"errors"
	"fmt"
)

// Sentinel errors for the merge/re-key surface. Controllers map these to
// HTTP statuses; services wrap them with context via fmt.Errorf("%w").
var (
	// ErrSourceUnavailable: the backup file is missing or unreadable.
	// Surfaced before any mutation.
	ErrSourceUnavailable = errors.New("backup source unavailable")

	// ErrMalformedInput: the record-set container violates the structural
	// contract. Surfaced before any mutation.
	ErrMalformedInput = errors.New("malformed backup data")

	// ErrPasswordRequired: the operation needs a password and none was given.
	ErrPasswordRequired = errors.New("password required")

	// ErrPasswordMismatch: the supplied password failed verification against
	// the stored hash.
	ErrPasswordMismatch = errors.New("password mismatch")

	// ErrSecurity: encryption or decryption failed (corrupt ciphertext,
	// wrong key).
	ErrSecurity = errors.New("security failure")

	// ErrTransactionFailure: the store rejected the atomic re-key
	// transaction; everything was rolled back.
	ErrTransactionFailure = errors.New("transaction failure")
)

// Rejected reports whether err is a user-correctable rejection (bad or
// missing password) rather than an unexpected failure.
func Rejected(err error) bool {
	return errors.Is(err, ErrPasswordRequired) || errors.Is(err, ErrPasswordMismatch)
}

// Message returns the short user-facing message for err. Raw error detail
// beyond the sentinel text is never exposed to callers.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrSourceUnavailable):
		return "Backup file is missing or unreadable"
	case errors.Is(err, ErrMalformedInput):
		return "Backup file is not in a recognized format"
	case errors.Is(err, ErrPasswordRequired):
		return "A password is required for this operation"
	case errors.Is(err, ErrPasswordMismatch):
		return "The password is incorrect"
	case errors.Is(err, ErrSecurity):
		return "Encrypted content could not be processed"
	case errors.Is(err, ErrTransactionFailure):
		return "The operation was rolled back; nothing was changed"
	default:
		return "Unexpected failure"
	}
}

// Wrap annotates err with operation context while preserving the sentinel
// for errors.Is checks.
func Wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
