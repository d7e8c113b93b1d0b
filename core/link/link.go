// Package link derives the per-entry link hash (xy) that makes the ledger
// tamper-evident. The message layout and separator are a wire contract:
// the exported HTML verifier rebuilds the identical byte string in the
// browser, so neither may change independently.
package link

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
)

// Genesis is the reserved x value of the first entry in a chain.
const Genesis = "GENESIS"

// Separator joins the message fields. Changing it desyncs every
// previously exported artifact.
const Separator = ":"

// ComputeXY hashes x, operation, y and the canonical timestamp rendering
// into the entry's content hash.
func ComputeXY(x, operation, y string, timestamp float64) string {
	message := x + Separator + operation + Separator + y + Separator + FormatTimestamp(timestamp)
	sum := sha256.Sum256([]byte(message))
	return hex.EncodeToString(sum[:])
}

// FormatTimestamp renders epoch seconds as the shortest decimal that
// round-trips the float64. For timestamp magnitudes this matches the
// default ECMAScript Number rendering, which the HTML export relies on.
func FormatTimestamp(timestamp float64) string {
	return strconv.FormatFloat(timestamp, 'f', -1, 64)
}
