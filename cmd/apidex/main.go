// Package main is the entry point for the apidex CLI.
package main

import (
	"github.com/donaldgifford/apidex/cmd/apidex/cmd"
)

func main() {
	cmd.Execute()
}
