// Package statehash turns arbitrary structured state into deterministic
// sha256 digests. Every digest in the ledger goes through RFC 8785 (JCS)
// canonicalization first, so equal values hash equally regardless of map
// insertion order, and the numeric rendering matches what a browser-side
// verifier computes for the same JSON.
package statehash

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/gowebpki/jcs"

	coreerrors "github.com/attestlog/attestlog/core/errors"
)

// HashState serializes state canonically and returns the hex sha256 digest.
// State that cannot be serialized (cycles, channels, funcs) yields a
// classified invalid_input error.
func HashState(state any) (string, error) {
	canonical, err := canonicalJSON(state)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}

// canonicalJSON returns the RFC 8785 canonical JSON encoding of value.
func canonicalJSON(value any) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, coreerrors.Wrap(
			fmt.Errorf("serialize state: %w", err),
			coreerrors.CategoryInvalidInput,
			"state_not_serializable",
			"state must be a JSON-representable value",
		)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return nil, coreerrors.Wrap(
			fmt.Errorf("canonicalize state: %w", err),
			coreerrors.CategoryInvalidInput,
			"state_not_canonical",
			"state must canonicalize under RFC 8785",
		)
	}
	return canonical, nil
}
