// Package export renders a chain as a standalone HTML artifact that
// re-verifies itself in the browser. The embedded script reproduces the
// exact link message of core/link, separator included, using WebCrypto
// sha256, so recorded hashes can be checked without trusting the server
// that produced the page.
package export

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"

	coreerrors "github.com/attestlog/attestlog/core/errors"
	schemaledger "github.com/attestlog/attestlog/core/schema/v1/ledger"
)

//go:embed template.html
var pageTemplate string

var page = template.Must(template.New("chain-export").Parse(pageTemplate))

type pageData struct {
	Document     schemaledger.Document
	DocumentJSON template.JS
}

// Render produces the self-verifying HTML artifact for one chain document.
func Render(document schemaledger.Document) ([]byte, error) {
	// json.Marshal escapes <, > and & so the payload cannot terminate the
	// surrounding script element.
	raw, err := json.Marshal(document)
	if err != nil {
		return nil, coreerrors.Wrap(
			fmt.Errorf("encode chain document: %w", err),
			coreerrors.CategoryInternalFailure,
			"export_encode_failed",
			"",
		)
	}

	var buffer bytes.Buffer
	if err := page.Execute(&buffer, pageData{
		Document:     document,
		DocumentJSON: template.JS(raw), // #nosec G203 -- marshalled above with HTML escaping on.
	}); err != nil {
		return nil, coreerrors.Wrap(
			fmt.Errorf("render chain export: %w", err),
			coreerrors.CategoryInternalFailure,
			"export_render_failed",
			"",
		)
	}
	return buffer.Bytes(), nil
}
