// Package ledger defines the wire shapes of the attestlog chain: entries,
// chain documents, scan findings, and receipts. Field names are a
// compatibility contract with stored chains and exported artifacts.
package ledger

// Entry is one link in a chain. X carries the previous entry's Y (or the
// genesis sentinel), Y is the state digest after the operation, and XY is
// the tamper-evidence hash over the entry's own fields. Entries are never
// mutated after creation; verification only classifies them.
type Entry struct {
	X         string  `json:"x"`
	Operation string  `json:"operation"`
	Y         string  `json:"y"`
	XY        string  `json:"xy"`
	Timestamp float64 `json:"timestamp"`
	Index     int     `json:"index"`
	Signature string  `json:"signature,omitempty"`
	PublicKey string  `json:"public_key,omitempty"`
	SignerID  string  `json:"signer_id,omitempty"`
}

// Signed reports whether the entry carries a signature to check.
func (e Entry) Signed() bool {
	return e.Signature != ""
}

// Document is the upload shape for offline verification: a chain identity
// plus its ordered entries.
type Document struct {
	ChainID string  `json:"chain_id"`
	Entries []Entry `json:"entries"`
}

// Finding is one discrete integrity anomaly discovered during a scan.
// Index is -1 for findings that concern the chain as a whole.
type Finding struct {
	Type   string `json:"type"`
	Index  int    `json:"index"`
	Detail string `json:"detail,omitempty"`
}

// Finding types emitted by the scanner.
const (
	FindingEmptyChain       = "empty_chain"
	FindingChainBreak       = "chain_break"
	FindingProofMismatch    = "proof_mismatch"
	FindingSignatureInvalid = "signature_invalid"
)

// Summary aggregates one full scan pass over a chain.
type Summary struct {
	EntryCount         int    `json:"entry_count"`
	AllVerified        bool   `json:"all_verified"`
	AllSignaturesValid bool   `json:"all_signatures_valid"`
	SignedEntries      int    `json:"signed_entries"`
	FirstX             string `json:"first_x,omitempty"`
	FinalY             string `json:"final_y,omitempty"`
	RootXY             string `json:"root_xy,omitempty"`
	HeadXY             string `json:"head_xy,omitempty"`
}

// Receipt certifies a chain's verified state at scan time. ReceiptHash is
// computed over every field except the timing bounds, so two verifiers
// scanning the same chain at different times produce identical hashes.
type Receipt struct {
	ReceiptID          string  `json:"receipt_id"`
	ChainID            string  `json:"chain_id"`
	EntryCount         int     `json:"entry_count"`
	AllVerified        bool    `json:"all_verified"`
	AllSignaturesValid bool    `json:"all_signatures_valid"`
	FirstX             string  `json:"first_x,omitempty"`
	FinalY             string  `json:"final_y,omitempty"`
	RootXY             string  `json:"root_xy,omitempty"`
	HeadXY             string  `json:"head_xy,omitempty"`
	ReceiptHash        string  `json:"receipt_hash"`
	StartedAt          float64 `json:"started_at"`
	CompletedAt        float64 `json:"completed_at"`
	DurationSeconds    float64 `json:"duration_seconds"`
}

// ScanResult is the transport shape of one verification run.
type ScanResult struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	ChainID     string    `json:"chain_id"`
	StartedAt   float64   `json:"started_at"`
	CompletedAt float64   `json:"completed_at"`
	Findings    []Finding `json:"findings"`
	Summary     Summary   `json:"summary"`
	Receipt     *Receipt  `json:"receipt,omitempty"`
}
