package main

import (
	"encoding/base64"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/attestlog/attestlog/core/fsx"
	"github.com/attestlog/attestlog/core/sign"
)

type keysInitOutput struct {
	OK             bool   `json:"ok"`
	KeyID          string `json:"key_id,omitempty"`
	PublicKeyPath  string `json:"public_key_path,omitempty"`
	PrivateKeyPath string `json:"private_key_path,omitempty"`
	Error          string `json:"error,omitempty"`
}

func runKeys(arguments []string) int {
	if len(arguments) == 0 || arguments[0] != "init" {
		fmt.Println("usage: attestlog keys init [--out-dir DIR] [--prefix NAME] [--force]")
		return exitInvalidInput
	}
	return runKeysInit(arguments[1:])
}

func runKeysInit(arguments []string) int {
	flagSet := flag.NewFlagSet("keys-init", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var outDir string
	var prefix string
	var force bool

	flagSet.StringVar(&outDir, "out-dir", filepath.Join("attestlog-data", "keys"), "directory for generated key files")
	flagSet.StringVar(&prefix, "prefix", "attestlog", "key file prefix")
	flagSet.BoolVar(&force, "force", false, "overwrite existing key files")

	if err := flagSet.Parse(arguments); err != nil {
		return writeJSONOutput(keysInitOutput{OK: false, Error: err.Error()}, exitInvalidInput)
	}

	kp, err := sign.GenerateKeyPair()
	if err != nil {
		return writeJSONOutput(keysInitOutput{OK: false, Error: err.Error()}, exitCodeForError(err, exitInternalFailure))
	}
	if err := os.MkdirAll(outDir, 0o750); err != nil {
		return writeJSONOutput(keysInitOutput{OK: false, Error: err.Error()}, exitInternalFailure)
	}

	privatePath := filepath.Join(outDir, prefix+".priv")
	publicPath := filepath.Join(outDir, prefix+".pub")
	if !force {
		for _, path := range []string{privatePath, publicPath} {
			if _, err := os.Stat(path); err == nil {
				return writeJSONOutput(keysInitOutput{OK: false, Error: fmt.Sprintf("%s exists; pass --force to overwrite", path)}, exitInvalidInput)
			}
		}
	}

	if err := fsx.WriteFileAtomic(privatePath, []byte(base64.StdEncoding.EncodeToString(kp.Private)+"\n"), 0o600); err != nil {
		return writeJSONOutput(keysInitOutput{OK: false, Error: err.Error()}, exitInternalFailure)
	}
	if err := fsx.WriteFileAtomic(publicPath, []byte(base64.StdEncoding.EncodeToString(kp.Public)+"\n"), 0o600); err != nil {
		return writeJSONOutput(keysInitOutput{OK: false, Error: err.Error()}, exitInternalFailure)
	}

	return writeJSONOutput(keysInitOutput{
		OK:             true,
		KeyID:          sign.KeyID(kp.Public),
		PublicKeyPath:  publicPath,
		PrivateKeyPath: privatePath,
	}, exitOK)
}
