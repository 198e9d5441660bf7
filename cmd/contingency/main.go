package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cecil-the-coder/ai-contingency/internal/cli"
)

func main() {
	if err := cli.ExecuteContext(context.Background(), cli.NewRootCommand()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
