// Package fsx provides the small amount of filesystem care the ledger
// store needs: atomic whole-file writes and durable line appends.
package fsx

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// WriteFileAtomic writes content to path via a temp file and rename so a
// reader never observes a partially written file.
func WriteFileAtomic(path string, content []byte, mode os.FileMode) error {
	parent := filepath.Dir(path)
	base := filepath.Base(path)

	tempFile, err := os.CreateTemp(parent, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempPath)
		}
	}()

	if _, err := tempFile.Write(content); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tempFile.Chmod(mode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS != "windows" {
			return fmt.Errorf("rename temp file: %w", err)
		}
		if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
			return fmt.Errorf("remove destination before rename: %w", removeErr)
		}
		if renameErr := os.Rename(tempPath, path); renameErr != nil {
			return fmt.Errorf("rename temp file after remove: %w", renameErr)
		}
	}
	cleanup = false

	syncDirectory(parent)
	return nil
}

// AppendLine appends one record line plus a trailing newline and fsyncs the
// file. Callers serialize concurrent appends to the same path; the chain
// store does this with a per-chain mutex.
func AppendLine(path string, line []byte, mode os.FileMode) error {
	parent := filepath.Dir(path)
	if parent != "." && parent != "" {
		if err := os.MkdirAll(parent, 0o750); err != nil {
			return fmt.Errorf("create append directory: %w", err)
		}
	}

	// #nosec G304 -- append path is supplied by the store, not request input.
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, mode)
	if err != nil {
		return fmt.Errorf("open append file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	payload := make([]byte, 0, len(line)+1)
	payload = append(payload, line...)
	payload = append(payload, '\n')
	if _, err := file.Write(payload); err != nil {
		return fmt.Errorf("append file line: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("sync append file: %w", err)
	}
	return nil
}

func syncDirectory(path string) {
	// #nosec G304 -- parent directory derives from the caller's destination path.
	if dirHandle, err := os.Open(path); err == nil {
		_ = dirHandle.Sync()
		_ = dirHandle.Close()
	}
}
