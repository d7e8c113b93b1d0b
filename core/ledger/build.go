// Package ledger builds chain entries on the producer path: state digest
// via core/statehash, link hash via core/link, genesis and index handling.
package ledger

import (
	"fmt"
	"strings"

	coreerrors "github.com/attestlog/attestlog/core/errors"
	"github.com/attestlog/attestlog/core/link"
	schemaledger "github.com/attestlog/attestlog/core/schema/v1/ledger"
	"github.com/attestlog/attestlog/core/statehash"
)

// NewEntry derives the next entry after prev for the given operation and
// resulting state. A nil prev starts a chain: x is the genesis sentinel and
// index is zero. The caller supplies the timestamp so the build stays a
// pure function of its inputs.
func NewEntry(prev *schemaledger.Entry, operation string, state any, timestamp float64) (schemaledger.Entry, error) {
	operation = strings.TrimSpace(operation)
	if operation == "" {
		return schemaledger.Entry{}, coreerrors.Wrap(
			fmt.Errorf("operation is required"),
			coreerrors.CategoryInvalidInput,
			"operation_missing",
			"name the action being recorded",
		)
	}

	x := link.Genesis
	index := 0
	if prev != nil {
		x = prev.Y
		index = prev.Index + 1
	}

	y, err := statehash.HashState(state)
	if err != nil {
		return schemaledger.Entry{}, err
	}

	return schemaledger.Entry{
		X:         x,
		Operation: operation,
		Y:         y,
		XY:        link.ComputeXY(x, operation, y, timestamp),
		Timestamp: timestamp,
		Index:     index,
	}, nil
}

// ValidateEntry checks the structural shape of an entry before scanning:
// required fields present and a plausible index. Content-level mismatches
// are the scanner's job, not a validation failure.
func ValidateEntry(entry schemaledger.Entry) error {
	switch {
	case entry.X == "":
		return structuralError(entry.Index, "x is required")
	case strings.TrimSpace(entry.Operation) == "":
		return structuralError(entry.Index, "operation is required")
	case entry.Y == "":
		return structuralError(entry.Index, "y is required")
	case entry.XY == "":
		return structuralError(entry.Index, "xy is required")
	case entry.Index < 0:
		return structuralError(entry.Index, "index must be >= 0")
	}
	return nil
}

func structuralError(index int, reason string) error {
	return coreerrors.Wrap(
		fmt.Errorf("entry %d: %s", index, reason),
		coreerrors.CategoryInvalidInput,
		"entry_invalid",
		"supply entries with x, operation, y, xy and a non-negative index",
	)
}
