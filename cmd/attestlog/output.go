package main

import (
	"encoding/json"
	"fmt"

	coreerrors "github.com/attestlog/attestlog/core/errors"
)

const (
	exitOK                = 0
	exitInvalidInput      = 2
	exitVerifyFailed      = 3
	exitMissingDependency = 4
	exitInternalFailure   = 5
)

func writeJSONOutput(output any, exitCode int) int {
	encoded, err := json.Marshal(output)
	if err != nil {
		fmt.Println(`{"ok":false,"error":"failed to encode output"}`)
		return exitInternalFailure
	}
	fmt.Println(string(encoded))
	return exitCode
}

func exitCodeForError(err error, fallbackExit int) int {
	if err == nil {
		return exitOK
	}
	switch coreerrors.CategoryOf(err) {
	case coreerrors.CategoryInvalidInput:
		return exitInvalidInput
	case coreerrors.CategoryVerification:
		return exitVerifyFailed
	case coreerrors.CategoryDependencyMissing:
		return exitMissingDependency
	case coreerrors.CategoryIOFailure, coreerrors.CategoryInternalFailure:
		return exitInternalFailure
	}
	return fallbackExit
}
