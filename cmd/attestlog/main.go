package main

import (
	"fmt"
	"os"
)

// version is stamped at release time via ldflags; default stays dev for local builds.
var version = "0.0.0-dev"

func main() {
	os.Exit(run(os.Args))
}

func run(arguments []string) int {
	if len(arguments) < 2 {
		printUsage()
		return exitInvalidInput
	}
	switch arguments[1] {
	case "append":
		return runAppend(arguments[2:])
	case "scan":
		return runScan(arguments[2:])
	case "keys":
		return runKeys(arguments[2:])
	case "export":
		return runExport(arguments[2:])
	case "serve":
		return runServe(arguments[2:])
	case "version", "--version", "-v":
		fmt.Println("attestlog", version)
		return exitOK
	case "--help", "-h", "help":
		printUsage()
		return exitOK
	default:
		printUsage()
		return exitInvalidInput
	}
}

func printUsage() {
	fmt.Println(`attestlog - tamper-evident action log

usage:
  attestlog append  --data-dir DIR --chain ID --operation NAME [--state JSON] [--sign-key PATH] [--signer ID]
  attestlog scan    (--data-dir DIR --chain ID | --file CHAIN.json) [--json]
  attestlog keys    init [--out-dir DIR] [--prefix NAME] [--force]
  attestlog export  --data-dir DIR --chain ID --out PAGE.html
  attestlog serve   [--config FILE]
  attestlog version`)
}
