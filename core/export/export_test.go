package export

import (
	"strings"
	"testing"

	coreledger "github.com/attestlog/attestlog/core/ledger"
	schemaledger "github.com/attestlog/attestlog/core/schema/v1/ledger"
)

func exportDocument(t *testing.T) schemaledger.Document {
	t.Helper()
	first, err := coreledger.NewEntry(nil, "init", map[string]any{"v": 1}, 1700000000.5)
	if err != nil {
		t.Fatalf("first entry: %v", err)
	}
	second, err := coreledger.NewEntry(&first, "update", map[string]any{"v": 2}, 1700000001.5)
	if err != nil {
		t.Fatalf("second entry: %v", err)
	}
	return schemaledger.Document{ChainID: "demo", Entries: []schemaledger.Entry{first, second}}
}

func TestRenderEmbedsChain(t *testing.T) {
	document := exportDocument(t)
	page, err := Render(document)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(page)

	for _, entry := range document.Entries {
		if !strings.Contains(html, entry.XY) {
			t.Fatalf("page missing recorded xy %s", entry.XY)
		}
		if !strings.Contains(html, entry.Y) {
			t.Fatalf("page missing state digest %s", entry.Y)
		}
	}
	if !strings.Contains(html, `"chain_id":"demo"`) {
		t.Fatalf("page missing chain document payload")
	}
}

func TestRenderPinsLinkMessageLayout(t *testing.T) {
	page, err := Render(exportDocument(t))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	// The client-side message must stay byte-identical to core/link.
	want := `entry.x + ":" + entry.operation + ":" + entry.y + ":" + String(entry.timestamp)`
	if !strings.Contains(string(page), want) {
		t.Fatalf("client verifier message layout drifted")
	}
}

func TestRenderEscapesHostileOperation(t *testing.T) {
	document := schemaledger.Document{
		ChainID: "demo",
		Entries: []schemaledger.Entry{{
			X:         "GENESIS",
			Operation: "</script><script>alert(1)</script>",
			Y:         "aa",
			XY:        "bb",
			Timestamp: 1,
			Index:     0,
		}},
	}
	page, err := Render(document)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(page), "</script><script>alert(1)") {
		t.Fatalf("hostile operation text escaped into markup")
	}
}

func TestRenderEmptyChain(t *testing.T) {
	page, err := Render(schemaledger.Document{ChainID: "empty", Entries: []schemaledger.Entry{}})
	if err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if !strings.Contains(string(page), "empty") {
		t.Fatalf("page missing chain id")
	}
}
