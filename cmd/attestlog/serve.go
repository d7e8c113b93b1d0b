package main

import (
	"crypto/ed25519"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/attestlog/attestlog/core/sign"
	"github.com/attestlog/attestlog/core/store"
	"github.com/attestlog/attestlog/internal/config"
	"github.com/attestlog/attestlog/internal/server"
)

func runServe(arguments []string) int {
	flagSet := flag.NewFlagSet("serve", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)

	var configPath string
	flagSet.StringVar(&configPath, "config", "", "YAML config file")

	if err := flagSet.Parse(arguments); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitInvalidInput
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCodeForError(err, exitInvalidInput)
	}

	chainStore, err := store.Open(loaded.DataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCodeForError(err, exitInternalFailure)
	}

	var signingKey ed25519.PrivateKey
	if loaded.SigningKey != "" {
		signingKey, err = sign.LoadPrivateKeyBase64(loaded.SigningKey)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return exitCodeForError(err, exitInvalidInput)
		}
	}

	logger := log.New(os.Stderr, "", 0)
	handler := server.New(server.Options{
		Store:      chainStore,
		SigningKey: signingKey,
		SignerID:   loaded.SignerID,
		Logger:     logger,
	}).Routes()

	httpServer := &http.Server{
		Addr:              loaded.Listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Printf(`{"msg":"attestlog serving","listen":%q,"data_dir":%q}`, loaded.Listen, loaded.DataDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintln(os.Stderr, err)
		return exitInternalFailure
	}
	return exitOK
}
