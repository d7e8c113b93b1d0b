// Package receipt aggregates a completed scan into a compact, re-derivable
// certificate. The receipt hash covers the aggregate fields but never the
// timing bounds, so independent verifiers scanning the same chain at
// different times agree on the hash.
package receipt

import (
	schemaledger "github.com/attestlog/attestlog/core/schema/v1/ledger"
	"github.com/attestlog/attestlog/core/statehash"
)

// Timing carries the wall-clock bounds of the scan, supplied by the caller
// so this package stays free of clock reads.
type Timing struct {
	StartedAt   float64
	CompletedAt float64
}

// hashedFields is the exact subset of the receipt covered by ReceiptHash.
type hashedFields struct {
	ChainID            string `json:"chain_id"`
	EntryCount         int    `json:"entry_count"`
	AllVerified        bool   `json:"all_verified"`
	AllSignaturesValid bool   `json:"all_signatures_valid"`
	FirstX             string `json:"first_x"`
	FinalY             string `json:"final_y"`
	RootXY             string `json:"root_xy"`
	HeadXY             string `json:"head_xy"`
}

// Build derives a receipt from a chain identity and its scan summary.
func Build(chainID string, summary schemaledger.Summary, timing Timing) (schemaledger.Receipt, error) {
	digest, err := statehash.HashState(hashedFields{
		ChainID:            chainID,
		EntryCount:         summary.EntryCount,
		AllVerified:        summary.AllVerified,
		AllSignaturesValid: summary.AllSignaturesValid,
		FirstX:             summary.FirstX,
		FinalY:             summary.FinalY,
		RootXY:             summary.RootXY,
		HeadXY:             summary.HeadXY,
	})
	if err != nil {
		return schemaledger.Receipt{}, err
	}

	return schemaledger.Receipt{
		ReceiptID:          "rcpt-" + digest[:16],
		ChainID:            chainID,
		EntryCount:         summary.EntryCount,
		AllVerified:        summary.AllVerified,
		AllSignaturesValid: summary.AllSignaturesValid,
		FirstX:             summary.FirstX,
		FinalY:             summary.FinalY,
		RootXY:             summary.RootXY,
		HeadXY:             summary.HeadXY,
		ReceiptHash:        digest,
		StartedAt:          timing.StartedAt,
		CompletedAt:        timing.CompletedAt,
		DurationSeconds:    timing.CompletedAt - timing.StartedAt,
	}, nil
}
