package main

import (
	"os"

	"github.com/qiu8310/vscode-test/cmd/vscode-test/commands"
)

func main() {
	if err := commands.Root().Execute(); err != nil {
		os.Exit(1)
	}
}
