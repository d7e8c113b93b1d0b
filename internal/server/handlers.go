package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	coreerrors "github.com/attestlog/attestlog/core/errors"
	"github.com/attestlog/attestlog/core/export"
	"github.com/attestlog/attestlog/core/scan"
	schemaledger "github.com/attestlog/attestlog/core/schema/v1/ledger"
	"github.com/attestlog/attestlog/core/schema/validate"
	"github.com/attestlog/attestlog/core/store"
)

const maxRequestBytes = 16 * 1024 * 1024

type appendRequest struct {
	Operation string   `json:"operation"`
	State     any      `json:"state"`
	Timestamp *float64 `json:"timestamp,omitempty"`
	Sign      bool     `json:"sign,omitempty"`
}

func (s *Server) handleHealth(writer http.ResponseWriter, _ *http.Request) {
	s.writeJSON(writer, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAppend(writer http.ResponseWriter, request *http.Request) {
	body, err := readBody(request)
	if err != nil {
		s.writeError(writer, err)
		return
	}
	var parsed appendRequest
	if err := json.Unmarshal(body, &parsed); err != nil {
		s.writeError(writer, invalidBody(err))
		return
	}

	timestamp := s.nowEpoch()
	if parsed.Timestamp != nil {
		timestamp = *parsed.Timestamp
	}
	opts := store.AppendOptions{}
	if parsed.Sign {
		if len(s.signingKey) == 0 {
			s.writeError(writer, coreerrors.Wrap(
				fmt.Errorf("server has no signing key configured"),
				coreerrors.CategoryDependencyMissing,
				"signing_key_missing",
				"configure signing_key in the service config",
			))
			return
		}
		opts.PrivateKey = s.signingKey
		opts.SignerID = s.signerID
	}

	entry, err := s.store.Append(chi.URLParam(request, "chainID"), parsed.Operation, parsed.State, timestamp, opts)
	if err != nil {
		s.writeError(writer, err)
		return
	}
	s.writeJSON(writer, http.StatusCreated, entry)
}

func (s *Server) handleListEntries(writer http.ResponseWriter, request *http.Request) {
	chainID := chi.URLParam(request, "chainID")
	entries, err := s.store.Entries(chainID)
	if err != nil {
		s.writeError(writer, err)
		return
	}
	s.writeJSON(writer, http.StatusOK, schemaledger.Document{ChainID: chainID, Entries: entries})
}

func (s *Server) handleScanChain(writer http.ResponseWriter, request *http.Request) {
	chainID := chi.URLParam(request, "chainID")
	entries, err := s.store.Entries(chainID)
	if err != nil {
		s.writeError(writer, err)
		return
	}
	s.runScan(writer, chainID, entries)
}

func (s *Server) handleScanUpload(writer http.ResponseWriter, request *http.Request) {
	body, err := readBody(request)
	if err != nil {
		s.writeError(writer, err)
		return
	}
	document, err := validate.ParseDocument(body)
	if err != nil {
		s.writeError(writer, err)
		return
	}
	s.runScan(writer, document.ChainID, document.Entries)
}

func (s *Server) runScan(writer http.ResponseWriter, chainID string, entries []schemaledger.Entry) {
	result, err := scan.Run(chainID, entries, s.nowEpoch(), s.nowEpoch)
	if err != nil {
		s.writeError(writer, err)
		return
	}
	s.writeJSON(writer, http.StatusOK, result)
}

func (s *Server) handleExport(writer http.ResponseWriter, request *http.Request) {
	chainID := chi.URLParam(request, "chainID")
	entries, err := s.store.Entries(chainID)
	if err != nil {
		s.writeError(writer, err)
		return
	}
	page, err := export.Render(schemaledger.Document{ChainID: chainID, Entries: entries})
	if err != nil {
		s.writeError(writer, err)
		return
	}
	writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write(page)
}

func readBody(request *http.Request) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(request.Body, maxRequestBytes+1))
	if err != nil {
		return nil, coreerrors.Wrap(
			fmt.Errorf("read request body: %w", err),
			coreerrors.CategoryIOFailure,
			"body_read_failed",
			"",
		)
	}
	if len(body) > maxRequestBytes {
		return nil, coreerrors.Wrap(
			fmt.Errorf("request body exceeds %d bytes", maxRequestBytes),
			coreerrors.CategoryInvalidInput,
			"body_too_large",
			"split the chain or raise the request limit",
		)
	}
	return body, nil
}

func invalidBody(cause error) error {
	return coreerrors.Wrap(
		fmt.Errorf("decode request body: %w", cause),
		coreerrors.CategoryInvalidInput,
		"body_invalid",
		"send a JSON request body",
	)
}
