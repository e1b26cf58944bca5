package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goliatone/go-artificial-world/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "aw-cli:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
