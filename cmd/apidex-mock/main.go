// Package main is the entry point for the apidex mock directory server.
package main

import (
	"os"

	"github.com/donaldgifford/apidex/cmd/apidex-mock/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
