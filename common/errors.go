package common

import "github.com/pkg/errors"

// Sentinel error kinds. Callers should check with errors.Is and wrap with
// errors.Wrap/Wrapf to attach context; these are never retried by the
// protocol state machines, every kind is fatal to the current session.
var (
	// ErrProof marks any zero-knowledge, commitment, or DL proof that
	// failed to verify.
	ErrProof = errors.New("proof verification failed")

	// ErrInputsLengthMismatch marks a phase that received the wrong
	// number of messages for the declared (t, n) or subgroup size.
	ErrInputsLengthMismatch = errors.New("inputs length mismatch")

	// ErrSpecific is a catch-all for in-protocol invariant violations.
	ErrSpecific = errors.New("protocol invariant violation")

	// ErrKeyGen marks a failure originating in the underlying
	// cryptographic library during key setup.
	ErrKeyGen = errors.New("key generation failed")

	// ErrSerialization marks a persisted or transported context/message
	// that is malformed.
	ErrSerialization = errors.New("serialization failed")
)
