package main

import (
	"fmt"
	"os"

	"github.com/lucky-aeon/agentx/mcp-manager/cmd"
)

var version = "dev"

func main() {
	cmd.SetVersionInfo(version)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
