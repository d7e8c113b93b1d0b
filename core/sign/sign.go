// Package sign provides Ed25519 signing and verification for ledger
// entries. The signature message binds x, operation, y and the entry's own
// xy digest; it is deliberately a different message than the link hash in
// core/link, which binds the timestamp instead. The two must never be
// unified: one anchors chain content, the other anchors the signer.
package sign

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	coreerrors "github.com/attestlog/attestlog/core/errors"
	schemaledger "github.com/attestlog/attestlog/core/schema/v1/ledger"
)

const AlgEd25519 = "ed25519"

type KeyPair struct {
	Public  ed25519.PublicKey
	Private ed25519.PrivateKey
}

// GenerateKeyPair produces a fresh Ed25519 keypair, or a classified
// dependency_missing error when the build excludes signing support.
func GenerateKeyPair() (KeyPair, error) {
	if err := Capability(); err != nil {
		return KeyPair{}, err
	}
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return KeyPair{}, fmt.Errorf("generate keypair: %w", err)
	}
	return KeyPair{Public: pub, Private: priv}, nil
}

// KeyID is the sha256 hex fingerprint of a public key.
func KeyID(pub ed25519.PublicKey) string {
	sum := sha256.Sum256(pub)
	return hex.EncodeToString(sum[:])
}

// EntryMessage builds the signed byte string for one entry.
func EntryMessage(entry schemaledger.Entry) []byte {
	return []byte(entry.X + ":" + entry.Operation + ":" + entry.Y + ":" + entry.XY)
}

// SignEntry signs the entry message and returns a copy of the entry with
// base64 signature and public key attached. SignerID is optional metadata
// identifying who held the key.
func SignEntry(entry schemaledger.Entry, priv ed25519.PrivateKey, signerID string) (schemaledger.Entry, error) {
	if err := Capability(); err != nil {
		return schemaledger.Entry{}, err
	}
	if len(priv) != ed25519.PrivateKeySize {
		return schemaledger.Entry{}, coreerrors.Wrap(
			fmt.Errorf("invalid private key length: %d", len(priv)),
			coreerrors.CategoryInvalidInput,
			"private_key_invalid",
			"provide a raw ed25519 private key",
		)
	}
	signature := ed25519.Sign(priv, EntryMessage(entry))
	signed := entry
	signed.Signature = base64.StdEncoding.EncodeToString(signature)
	signed.PublicKey = base64.StdEncoding.EncodeToString(priv.Public().(ed25519.PublicKey))
	signed.SignerID = strings.TrimSpace(signerID)
	return signed, nil
}

// VerifyEntry recomputes the entry message and checks the attached
// signature. It returns false, never an error: a missing signature, an
// undecodable field, or a failed check are all the same non-fact for the
// scanner, which reports them as findings rather than faults.
func VerifyEntry(entry schemaledger.Entry) bool {
	if Capability() != nil {
		return false
	}
	if entry.Signature == "" || entry.PublicKey == "" {
		return false
	}
	rawSig, err := base64.StdEncoding.DecodeString(entry.Signature)
	if err != nil || len(rawSig) != ed25519.SignatureSize {
		return false
	}
	rawPub, err := base64.StdEncoding.DecodeString(entry.PublicKey)
	if err != nil || len(rawPub) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(rawPub), EntryMessage(entry), rawSig)
}

func ParsePrivateKeyBase64(encoded string) (ed25519.PrivateKey, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode private key: %w", err)
	}
	if l := len(raw); l != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("invalid private key length: %d", l)
	}
	return ed25519.PrivateKey(raw), nil
}

func ParsePublicKeyBase64(encoded string) (ed25519.PublicKey, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode public key: %w", err)
	}
	if l := len(raw); l != ed25519.PublicKeySize {
		return nil, fmt.Errorf("invalid public key length: %d", l)
	}
	return ed25519.PublicKey(raw), nil
}

func LoadPrivateKeyBase64(path string) (ed25519.PrivateKey, error) {
	// #nosec G304 -- caller supplies local key path by design
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	return ParsePrivateKeyBase64(string(b))
}

func LoadPublicKeyBase64(path string) (ed25519.PublicKey, error) {
	// #nosec G304 -- caller supplies local key path by design
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	return ParsePublicKeyBase64(string(b))
}
