// Package store persists chains as append-only JSONL files, one file per
// chain under a data directory. Appends to one chain are serialized behind
// a per-chain lock so index assignment stays gap-free and every new entry's
// x equals the previous entry's y by construction. The scanner would flag a
// violation of that discipline as a chain_break; the lock is what keeps the
// flag theoretical.
package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	coreerrors "github.com/attestlog/attestlog/core/errors"
	"github.com/attestlog/attestlog/core/fsx"
	coreledger "github.com/attestlog/attestlog/core/ledger"
	schemaledger "github.com/attestlog/attestlog/core/schema/v1/ledger"
	"github.com/attestlog/attestlog/core/sign"
)

const maxEntryLineBytes = 10 * 1024 * 1024

var chainIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

type Store struct {
	dir string

	mu     sync.Mutex
	chains map[string]*chainState
}

type chainState struct {
	mu     sync.Mutex
	loaded bool
	count  int
	head   schemaledger.Entry
}

// AppendOptions controls optional signing of the appended entry.
type AppendOptions struct {
	PrivateKey []byte
	SignerID   string
}

func Open(dir string) (*Store, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, coreerrors.Wrap(
			fmt.Errorf("data directory is required"),
			coreerrors.CategoryInvalidInput,
			"data_dir_missing",
			"configure a data directory for chain storage",
		)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, coreerrors.Wrap(
			fmt.Errorf("create data directory: %w", err),
			coreerrors.CategoryIOFailure,
			"data_dir_create_failed",
			"check permissions on the data directory",
		)
	}
	return &Store{dir: dir, chains: map[string]*chainState{}}, nil
}

// Append records one action on the chain: it derives the next entry from
// the current head, optionally signs it, and appends it durably before
// updating the cached head.
func (s *Store) Append(chainID, operation string, state any, timestamp float64, opts AppendOptions) (schemaledger.Entry, error) {
	if err := validateChainID(chainID); err != nil {
		return schemaledger.Entry{}, err
	}
	chain := s.chain(chainID)
	chain.mu.Lock()
	defer chain.mu.Unlock()

	if err := s.loadLocked(chainID, chain); err != nil {
		return schemaledger.Entry{}, err
	}

	var prev *schemaledger.Entry
	if chain.count > 0 {
		head := chain.head
		prev = &head
	}
	entry, err := coreledger.NewEntry(prev, operation, state, timestamp)
	if err != nil {
		return schemaledger.Entry{}, err
	}
	if len(opts.PrivateKey) > 0 {
		entry, err = sign.SignEntry(entry, opts.PrivateKey, opts.SignerID)
		if err != nil {
			return schemaledger.Entry{}, err
		}
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return schemaledger.Entry{}, coreerrors.Wrap(
			fmt.Errorf("encode entry: %w", err),
			coreerrors.CategoryInternalFailure,
			"entry_encode_failed",
			"",
		)
	}
	if err := fsx.AppendLine(s.chainPath(chainID), line, 0o600); err != nil {
		return schemaledger.Entry{}, coreerrors.Wrap(
			err,
			coreerrors.CategoryIOFailure,
			"chain_append_failed",
			"check the data directory is writable",
		)
	}
	chain.head = entry
	chain.count++
	return entry, nil
}

// Entries returns the full ordered sequence for one chain. A chain with no
// file yet is an empty sequence, not an error.
func (s *Store) Entries(chainID string) ([]schemaledger.Entry, error) {
	if err := validateChainID(chainID); err != nil {
		return nil, err
	}
	return s.readEntries(chainID)
}

// Chains lists the chain identities present in the data directory.
func (s *Store) Chains() ([]string, error) {
	dirEntries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, coreerrors.Wrap(
			fmt.Errorf("read data directory: %w", err),
			coreerrors.CategoryIOFailure,
			"data_dir_read_failed",
			"",
		)
	}
	var ids []string
	for _, dirEntry := range dirEntries {
		name := dirEntry.Name()
		if dirEntry.IsDir() || !strings.HasSuffix(name, ".jsonl") {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".jsonl"))
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *Store) chain(chainID string) *chainState {
	s.mu.Lock()
	defer s.mu.Unlock()
	chain, ok := s.chains[chainID]
	if !ok {
		chain = &chainState{}
		s.chains[chainID] = chain
	}
	return chain
}

func (s *Store) loadLocked(chainID string, chain *chainState) error {
	if chain.loaded {
		return nil
	}
	entries, err := s.readEntries(chainID)
	if err != nil {
		return err
	}
	chain.count = len(entries)
	if len(entries) > 0 {
		chain.head = entries[len(entries)-1]
	}
	chain.loaded = true
	return nil
}

func (s *Store) readEntries(chainID string) ([]schemaledger.Entry, error) {
	path := s.chainPath(chainID)
	// #nosec G304 -- chain id is validated against a strict pattern above.
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []schemaledger.Entry{}, nil
		}
		return nil, coreerrors.Wrap(
			fmt.Errorf("open chain file: %w", err),
			coreerrors.CategoryIOFailure,
			"chain_open_failed",
			"",
		)
	}
	defer func() {
		_ = file.Close()
	}()

	var entries []schemaledger.Entry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEntryLineBytes)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}
		var entry schemaledger.Entry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			return nil, coreerrors.Wrap(
				fmt.Errorf("chain %s line %d: %w", chainID, line, err),
				coreerrors.CategoryIOFailure,
				"chain_file_corrupt",
				"the chain file holds a non-JSON line",
			)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, coreerrors.Wrap(
			fmt.Errorf("read chain file: %w", err),
			coreerrors.CategoryIOFailure,
			"chain_read_failed",
			"",
		)
	}
	if entries == nil {
		entries = []schemaledger.Entry{}
	}
	return entries, nil
}

func (s *Store) chainPath(chainID string) string {
	return filepath.Join(s.dir, chainID+".jsonl")
}

func validateChainID(chainID string) error {
	if chainIDPattern.MatchString(chainID) {
		return nil
	}
	return coreerrors.Wrap(
		fmt.Errorf("invalid chain id: %q", chainID),
		coreerrors.CategoryInvalidInput,
		"chain_id_invalid",
		"chain ids are alphanumeric with . _ - and at most 128 chars",
	)
}
