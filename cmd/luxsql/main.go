package main

import (
	"fmt"
	"os"

	"github.com/LuxDevHQ/Advanced-SQL-Techniques/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "luxsql: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
