package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"time"

	schemaledger "github.com/attestlog/attestlog/core/schema/v1/ledger"
	"github.com/attestlog/attestlog/core/sign"
	"github.com/attestlog/attestlog/core/store"
)

type appendOutput struct {
	OK    bool                `json:"ok"`
	Entry *schemaledger.Entry `json:"entry,omitempty"`
	Error string              `json:"error,omitempty"`
}

func runAppend(arguments []string) int {
	flagSet := flag.NewFlagSet("append", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var dataDir string
	var chainID string
	var operation string
	var stateJSON string
	var timestamp float64
	var signKeyPath string
	var signerID string

	flagSet.StringVar(&dataDir, "data-dir", "attestlog-data", "chain data directory")
	flagSet.StringVar(&chainID, "chain", "", "chain id")
	flagSet.StringVar(&operation, "operation", "", "action name to record")
	flagSet.StringVar(&stateJSON, "state", "null", "resulting state as a JSON value")
	flagSet.Float64Var(&timestamp, "timestamp", 0, "epoch seconds; defaults to now")
	flagSet.StringVar(&signKeyPath, "sign-key", "", "base64 ed25519 private key file; sign the entry")
	flagSet.StringVar(&signerID, "signer", "", "signer id to attach when signing")

	if err := flagSet.Parse(arguments); err != nil {
		return writeJSONOutput(appendOutput{OK: false, Error: err.Error()}, exitInvalidInput)
	}
	if chainID == "" || operation == "" {
		return writeJSONOutput(appendOutput{OK: false, Error: "--chain and --operation are required"}, exitInvalidInput)
	}

	var state any
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return writeJSONOutput(appendOutput{OK: false, Error: fmt.Sprintf("parse --state: %v", err)}, exitInvalidInput)
	}
	if timestamp == 0 {
		timestamp = float64(time.Now().UnixNano()) / 1e9
	}

	opts := store.AppendOptions{SignerID: signerID}
	if signKeyPath != "" {
		privateKey, err := sign.LoadPrivateKeyBase64(signKeyPath)
		if err != nil {
			return writeJSONOutput(appendOutput{OK: false, Error: err.Error()}, exitInvalidInput)
		}
		opts.PrivateKey = privateKey
	}

	chainStore, err := store.Open(dataDir)
	if err != nil {
		return writeJSONOutput(appendOutput{OK: false, Error: err.Error()}, exitCodeForError(err, exitInternalFailure))
	}
	entry, err := chainStore.Append(chainID, operation, state, timestamp, opts)
	if err != nil {
		return writeJSONOutput(appendOutput{OK: false, Error: err.Error()}, exitCodeForError(err, exitInternalFailure))
	}
	return writeJSONOutput(appendOutput{OK: true, Entry: &entry}, exitOK)
}
