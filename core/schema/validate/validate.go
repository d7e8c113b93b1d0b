// Package validate checks uploaded chain documents against the embedded
// JSON schema before they ever reach the scanner. A document that fails
// here is an input error for the transport layer, never an integrity
// finding: "cannot parse the chain" is a different statement than "parsed
// a chain that is broken".
package validate

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/kaptinlin/jsonschema"

	coreerrors "github.com/attestlog/attestlog/core/errors"
	schemaledger "github.com/attestlog/attestlog/core/schema/v1/ledger"
)

//go:embed chain_document.schema.json
var chainDocumentSchema []byte

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func documentSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.AssertFormat = true
		compiled, compileErr = compiler.Compile(chainDocumentSchema)
	})
	if compileErr != nil {
		return nil, coreerrors.Wrap(
			fmt.Errorf("compile chain document schema: %w", compileErr),
			coreerrors.CategoryInternalFailure,
			"schema_compile_failed",
			"",
		)
	}
	return compiled, nil
}

// ValidateDocument checks raw JSON against the chain document schema.
func ValidateDocument(data []byte) error {
	schema, err := documentSchema()
	if err != nil {
		return err
	}
	result := schema.ValidateJSON(data)
	if result.IsValid() {
		return nil
	}
	return coreerrors.Wrap(
		fmt.Errorf("chain document schema validation failed: %v", result.Errors),
		coreerrors.CategoryInvalidInput,
		"document_invalid",
		"upload a document shaped {chain_id, entries: [...]}",
	)
}

// docEntry mirrors the wire entry with an optional index so uploads that
// omit it fall back to positional indexing.
type docEntry struct {
	X         string  `json:"x"`
	Operation string  `json:"operation"`
	Y         string  `json:"y"`
	XY        string  `json:"xy"`
	Timestamp float64 `json:"timestamp"`
	Index     *int    `json:"index"`
	Signature string  `json:"signature"`
	PublicKey string  `json:"public_key"`
	SignerID  string  `json:"signer_id"`
}

// ParseDocument validates and decodes a chain document into typed form.
func ParseDocument(data []byte) (schemaledger.Document, error) {
	if err := ValidateDocument(data); err != nil {
		return schemaledger.Document{}, err
	}
	var raw struct {
		ChainID string     `json:"chain_id"`
		Entries []docEntry `json:"entries"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return schemaledger.Document{}, coreerrors.Wrap(
			fmt.Errorf("decode chain document: %w", err),
			coreerrors.CategoryInvalidInput,
			"document_invalid",
			"upload a document shaped {chain_id, entries: [...]}",
		)
	}

	document := schemaledger.Document{
		ChainID: raw.ChainID,
		Entries: make([]schemaledger.Entry, 0, len(raw.Entries)),
	}
	for position, entry := range raw.Entries {
		index := position
		if entry.Index != nil {
			index = *entry.Index
		}
		document.Entries = append(document.Entries, schemaledger.Entry{
			X:         entry.X,
			Operation: entry.Operation,
			Y:         entry.Y,
			XY:        entry.XY,
			Timestamp: entry.Timestamp,
			Index:     index,
			Signature: entry.Signature,
			PublicKey: entry.PublicKey,
			SignerID:  entry.SignerID,
		})
	}
	return document, nil
}
