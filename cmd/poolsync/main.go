// Package main is the entry point for poolsync - Cognito user pool
// export and import.
package main

import (
	"os"

	"poolsync/cmd/poolsync/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
