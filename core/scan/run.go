package scan

import (
	"github.com/attestlog/attestlog/core/receipt"
	schemaledger "github.com/attestlog/attestlog/core/schema/v1/ledger"
)

// Run scans a chain and wraps the outcome in the transport shape: findings,
// summary, receipt, and wall-clock bounds. The completion time is sampled
// from now after the scan finishes, so completed_at - started_at bounds the
// actual work. The run id derives from the receipt hash, so any verifier of
// the same input reproduces the whole result, timestamps aside.
func Run(chainID string, entries []schemaledger.Entry, startedAt float64, now func() float64) (schemaledger.ScanResult, error) {
	findings, summary, err := Scan(entries)
	if err != nil {
		return schemaledger.ScanResult{}, err
	}
	completedAt := now()
	built, err := receipt.Build(chainID, summary, receipt.Timing{
		StartedAt:   startedAt,
		CompletedAt: completedAt,
	})
	if err != nil {
		return schemaledger.ScanResult{}, err
	}

	return schemaledger.ScanResult{
		ID:          "scan-" + built.ReceiptHash[:16],
		Status:      "completed",
		ChainID:     chainID,
		StartedAt:   startedAt,
		CompletedAt: completedAt,
		Findings:    findings,
		Summary:     summary,
		Receipt:     &built,
	}, nil
}
