package main

import (
	"flag"
	"io"

	"github.com/attestlog/attestlog/core/export"
	"github.com/attestlog/attestlog/core/fsx"
	schemaledger "github.com/attestlog/attestlog/core/schema/v1/ledger"
	"github.com/attestlog/attestlog/core/store"
)

type exportOutput struct {
	OK      bool   `json:"ok"`
	Path    string `json:"path,omitempty"`
	Entries int    `json:"entries"`
	Error   string `json:"error,omitempty"`
}

func runExport(arguments []string) int {
	flagSet := flag.NewFlagSet("export", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var dataDir string
	var chainID string
	var outPath string

	flagSet.StringVar(&dataDir, "data-dir", "attestlog-data", "chain data directory")
	flagSet.StringVar(&chainID, "chain", "", "chain id to export")
	flagSet.StringVar(&outPath, "out", "", "output HTML path")

	if err := flagSet.Parse(arguments); err != nil {
		return writeJSONOutput(exportOutput{OK: false, Error: err.Error()}, exitInvalidInput)
	}
	if chainID == "" || outPath == "" {
		return writeJSONOutput(exportOutput{OK: false, Error: "--chain and --out are required"}, exitInvalidInput)
	}

	chainStore, err := store.Open(dataDir)
	if err != nil {
		return writeJSONOutput(exportOutput{OK: false, Error: err.Error()}, exitCodeForError(err, exitInternalFailure))
	}
	entries, err := chainStore.Entries(chainID)
	if err != nil {
		return writeJSONOutput(exportOutput{OK: false, Error: err.Error()}, exitCodeForError(err, exitInternalFailure))
	}

	page, err := export.Render(schemaledger.Document{ChainID: chainID, Entries: entries})
	if err != nil {
		return writeJSONOutput(exportOutput{OK: false, Error: err.Error()}, exitCodeForError(err, exitInternalFailure))
	}
	if err := fsx.WriteFileAtomic(outPath, page, 0o600); err != nil {
		return writeJSONOutput(exportOutput{OK: false, Error: err.Error()}, exitInternalFailure)
	}
	return writeJSONOutput(exportOutput{OK: true, Path: outPath, Entries: len(entries)}, exitOK)
}
