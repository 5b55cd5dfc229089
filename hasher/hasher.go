// Package hasher turns an arbitrary payload into a stable cache key.
//
// The payload is canonicalized by a JSON round trip (map keys sorted, struct
// and map forms of the same data collapse to the same shape) and the key is
// the hex sha256 of the canonical bytes. Structurally equal payloads always
// produce the same key, whichever process computes it.
package hasher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Error signals a payload that cannot be canonicalized (unsupported values
// such as channels, functions or NaN).
type Error struct {
	Err error
}

func (e *Error) Error() string {
	return "hasher: payload not canonicalizable: " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Sum returns the cache key for payload.
func Sum(payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", &Error{Err: err}
	}

	// Round trip so struct values and their decoded map form hash the same.
	var norm any
	if err := json.Unmarshal(raw, &norm); err != nil {
		return "", &Error{Err: err}
	}
	canonical, err := json.Marshal(norm)
	if err != nil {
		return "", &Error{Err: err}
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// SumContext is the awaitable counterpart of Sum. It produces identical output
// for identical input and honors ctx cancellation before doing any work.
func SumContext(ctx context.Context, payload any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return Sum(payload)
}
