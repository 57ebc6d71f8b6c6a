package main

import (
	"fmt"
	"os"

	"github.com/theappraisallane/jira-to-analytics/cmd/jira-to-analytics/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
