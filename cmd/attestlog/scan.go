package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/attestlog/attestlog/core/scan"
	schemaledger "github.com/attestlog/attestlog/core/schema/v1/ledger"
	"github.com/attestlog/attestlog/core/schema/validate"
	"github.com/attestlog/attestlog/core/store"
)

type scanOutput struct {
	OK     bool                     `json:"ok"`
	Result *schemaledger.ScanResult `json:"result,omitempty"`
	Error  string                   `json:"error,omitempty"`
}

func runScan(arguments []string) int {
	flagSet := flag.NewFlagSet("scan", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var dataDir string
	var chainID string
	var filePath string
	var jsonOutput bool

	flagSet.StringVar(&dataDir, "data-dir", "attestlog-data", "chain data directory")
	flagSet.StringVar(&chainID, "chain", "", "chain id to scan from the data directory")
	flagSet.StringVar(&filePath, "file", "", "chain document to scan instead of the store")
	flagSet.BoolVar(&jsonOutput, "json", false, "emit the full scan result as JSON")

	if err := flagSet.Parse(arguments); err != nil {
		return writeJSONOutput(scanOutput{OK: false, Error: err.Error()}, exitInvalidInput)
	}
	if (chainID == "") == (filePath == "") {
		return writeJSONOutput(scanOutput{OK: false, Error: "pass exactly one of --chain or --file"}, exitInvalidInput)
	}

	var entries []schemaledger.Entry
	if filePath != "" {
		// #nosec G304 -- chain document path is explicit operator input.
		raw, err := os.ReadFile(filePath)
		if err != nil {
			return writeJSONOutput(scanOutput{OK: false, Error: err.Error()}, exitInternalFailure)
		}
		document, err := validate.ParseDocument(raw)
		if err != nil {
			return writeJSONOutput(scanOutput{OK: false, Error: err.Error()}, exitCodeForError(err, exitInvalidInput))
		}
		chainID = document.ChainID
		entries = document.Entries
	} else {
		chainStore, err := store.Open(dataDir)
		if err != nil {
			return writeJSONOutput(scanOutput{OK: false, Error: err.Error()}, exitCodeForError(err, exitInternalFailure))
		}
		entries, err = chainStore.Entries(chainID)
		if err != nil {
			return writeJSONOutput(scanOutput{OK: false, Error: err.Error()}, exitCodeForError(err, exitInternalFailure))
		}
	}

	epochNow := func() float64 { return float64(time.Now().UnixNano()) / 1e9 }
	result, err := scan.Run(chainID, entries, epochNow(), epochNow)
	if err != nil {
		return writeJSONOutput(scanOutput{OK: false, Error: err.Error()}, exitCodeForError(err, exitInvalidInput))
	}

	if jsonOutput {
		exitCode := exitOK
		if !result.Summary.AllVerified || !result.Summary.AllSignaturesValid {
			exitCode = exitVerifyFailed
		}
		return writeJSONOutput(scanOutput{OK: exitCode == exitOK, Result: &result}, exitCode)
	}

	fmt.Printf("chain %s: %d entries, %d findings\n", result.ChainID, result.Summary.EntryCount, len(result.Findings))
	for _, finding := range result.Findings {
		fmt.Printf("  [%s] index %d: %s\n", finding.Type, finding.Index, finding.Detail)
	}
	if result.Summary.AllVerified && result.Summary.AllSignaturesValid {
		fmt.Printf("verified; receipt %s\n", result.Receipt.ReceiptHash)
		return exitOK
	}
	fmt.Println("verification FAILED")
	return exitVerifyFailed
}
