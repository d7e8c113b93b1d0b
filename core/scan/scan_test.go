package scan

import (
	"fmt"
	"testing"

	coreerrors "github.com/attestlog/attestlog/core/errors"
	coreledger "github.com/attestlog/attestlog/core/ledger"
	schemaledger "github.com/attestlog/attestlog/core/schema/v1/ledger"
	"github.com/attestlog/attestlog/core/sign"
)

func buildChain(t *testing.T, length int) []schemaledger.Entry {
	t.Helper()
	entries := make([]schemaledger.Entry, 0, length)
	var prev *schemaledger.Entry
	for i := 0; i < length; i++ {
		entry, err := coreledger.NewEntry(prev, fmt.Sprintf("op-%d", i), map[string]any{"v": i}, 1700000000.0+float64(i))
		if err != nil {
			t.Fatalf("build entry %d: %v", i, err)
		}
		entries = append(entries, entry)
		prev = &entries[len(entries)-1]
	}
	return entries
}

func TestScanValidChain(t *testing.T) {
	findings, summary, err := Scan(buildChain(t, 2))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(findings) != 0 {
		t.Fatalf("expected no findings, got %v", findings)
	}
	if !summary.AllVerified || !summary.AllSignaturesValid {
		t.Fatalf("expected clean summary, got %+v", summary)
	}
	if summary.EntryCount != 2 {
		t.Fatalf("entry count = %d", summary.EntryCount)
	}
	if summary.FirstX != "GENESIS" {
		t.Fatalf("first_x = %q", summary.FirstX)
	}
}

func TestScanEmptyChain(t *testing.T) {
	findings, summary, err := Scan(nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(findings) != 1 || findings[0].Type != schemaledger.FindingEmptyChain {
		t.Fatalf("expected a single empty_chain finding, got %v", findings)
	}
	if summary.EntryCount != 0 || !summary.AllVerified {
		t.Fatalf("unexpected summary %+v", summary)
	}
}

func TestScanChainBreak(t *testing.T) {
	entries := buildChain(t, 3)
	entries[1].X = "unrelated-digest"

	findings, summary, err := Scan(entries)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if summary.AllVerified {
		t.Fatalf("expected all_verified=false")
	}
	var breaks []schemaledger.Finding
	for _, finding := range findings {
		if finding.Type == schemaledger.FindingChainBreak {
			breaks = append(breaks, finding)
		}
	}
	if len(breaks) != 1 || breaks[0].Index != 1 {
		t.Fatalf("expected one chain_break at index 1, got %v", breaks)
	}
	// The altered x also invalidates the stored proof for that entry.
	foundMismatch := false
	for _, finding := range findings {
		if finding.Type == schemaledger.FindingProofMismatch && finding.Index == 1 {
			foundMismatch = true
		}
	}
	if !foundMismatch {
		t.Fatalf("expected proof_mismatch alongside the break, got %v", findings)
	}
}

func TestScanContinuesPastBreak(t *testing.T) {
	entries := buildChain(t, 4)
	entries[1].X = "bad-1"
	entries[3].X = "bad-3"

	findings, _, err := Scan(entries)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	var breakIndexes []int
	for _, finding := range findings {
		if finding.Type == schemaledger.FindingChainBreak {
			breakIndexes = append(breakIndexes, finding.Index)
		}
	}
	if len(breakIndexes) != 2 || breakIndexes[0] != 1 || breakIndexes[1] != 3 {
		t.Fatalf("expected breaks at 1 and 3, got %v", breakIndexes)
	}
}

func TestScanProofMismatch(t *testing.T) {
	entries := buildChain(t, 2)
	entries[1].Operation = "tampered"

	findings, summary, err := Scan(entries)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if summary.AllVerified {
		t.Fatalf("expected all_verified=false")
	}
	if len(findings) != 1 || findings[0].Type != schemaledger.FindingProofMismatch || findings[0].Index != 1 {
		t.Fatalf("expected one proof_mismatch at index 1, got %v", findings)
	}
}

func TestScanSignatureInvalid(t *testing.T) {
	entries := buildChain(t, 2)
	kp, err := sign.GenerateKeyPair()
	if err != nil {
		t.Fatalf("generate keypair: %v", err)
	}
	signed, err := sign.SignEntry(entries[1], kp.Private, "agent-1")
	if err != nil {
		t.Fatalf("sign entry: %v", err)
	}
	signed.SignerID = "someone-else"
	// SignerID is not part of the message, so changing it alone stays valid.
	entries[1] = signed

	findings, summary, err := Scan(entries)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(findings) != 0 || !summary.AllSignaturesValid {
		t.Fatalf("signer_id change must not invalidate, got %v", findings)
	}
	if summary.SignedEntries != 1 {
		t.Fatalf("signed entries = %d", summary.SignedEntries)
	}

	entries[1].Signature = entries[1].Signature[:10] + "AAAA" + entries[1].Signature[14:]
	findings, summary, err = Scan(entries)
	if err != nil {
		t.Fatalf("scan corrupted: %v", err)
	}
	if summary.AllSignaturesValid {
		t.Fatalf("expected all_signatures_valid=false")
	}
	found := false
	for _, finding := range findings {
		if finding.Type == schemaledger.FindingSignatureInvalid && finding.Index == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected signature_invalid at index 1, got %v", findings)
	}
	// Corrupt signature bytes must not disturb link verification.
	if !summary.AllVerified {
		t.Fatalf("link verification must ignore signature fields")
	}
}

func TestScanUnsignedEntriesAreNotFindings(t *testing.T) {
	findings, summary, err := Scan(buildChain(t, 3))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(findings) != 0 || !summary.AllSignaturesValid || summary.SignedEntries != 0 {
		t.Fatalf("unsigned chain must scan clean, got %v %+v", findings, summary)
	}
}

func TestScanStructuralError(t *testing.T) {
	entries := buildChain(t, 2)
	entries[1].Operation = ""

	_, _, err := Scan(entries)
	if err == nil {
		t.Fatalf("expected structural error")
	}
	if got := coreerrors.CategoryOf(err); got != coreerrors.CategoryInvalidInput {
		t.Fatalf("category = %q", got)
	}
}

func TestScanDeterministicFindings(t *testing.T) {
	entries := buildChain(t, 3)
	entries[1].X = "bad"
	entries[2].Y = "also-bad"

	first, _, err := Scan(entries)
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	second, _, err := Scan(entries)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("finding counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("finding %d differs: %v vs %v", i, first[i], second[i])
		}
	}
	for i := 1; i < len(first); i++ {
		if first[i].Index < first[i-1].Index {
			t.Fatalf("findings out of index order: %v", first)
		}
	}
}

func TestScanLargeChainParallelPath(t *testing.T) {
	entries := buildChain(t, parallelThreshold+10)
	entries[700%len(entries)].Y = "tampered"

	findings, summary, err := Scan(entries)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if summary.AllVerified {
		t.Fatalf("expected tamper to be detected on the parallel path")
	}
	// Tampering y at i breaks that entry's proof and the next entry's link.
	types := map[string]bool{}
	for _, finding := range findings {
		types[finding.Type] = true
	}
	if !types[schemaledger.FindingProofMismatch] || !types[schemaledger.FindingChainBreak] {
		t.Fatalf("expected proof_mismatch and chain_break, got %v", findings)
	}
}

func TestScanEndToEndScenario(t *testing.T) {
	// Build init to v=1, update to v=2, then replace the second
	// entry's x with an unrelated string.
	first, err := coreledger.NewEntry(nil, "init", map[string]any{"v": 1}, 1700000000.0)
	if err != nil {
		t.Fatalf("first entry: %v", err)
	}
	second, err := coreledger.NewEntry(&first, "update", map[string]any{"v": 2}, 1700000001.0)
	if err != nil {
		t.Fatalf("second entry: %v", err)
	}

	findings, summary, err := Scan([]schemaledger.Entry{first, second})
	if err != nil {
		t.Fatalf("scan clean: %v", err)
	}
	if len(findings) != 0 || !summary.AllVerified {
		t.Fatalf("expected clean scan, got %v", findings)
	}

	second.X = "unrelated"
	second.XY = "unrelated-proof"
	findings, _, err = Scan([]schemaledger.Entry{first, second})
	if err != nil {
		t.Fatalf("scan tampered: %v", err)
	}
	foundBreak := false
	for _, finding := range findings {
		if finding.Type == schemaledger.FindingChainBreak && finding.Index == 1 {
			foundBreak = true
		}
	}
	if !foundBreak {
		t.Fatalf("expected chain_break at index 1, got %v", findings)
	}
}
