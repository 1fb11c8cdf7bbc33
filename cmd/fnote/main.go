package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/open-cli-collective/footnote-cli/internal/cmd/root"
	"github.com/open-cli-collective/footnote-cli/internal/view"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := root.NewCmdRoot()
	if err := cmd.ExecuteContext(ctx); err != nil {
		noColor, _ := cmd.PersistentFlags().GetBool("no-color")
		view.NewRenderer(view.FormatTable, noColor).Error(err.Error())
		stop()
		os.Exit(root.ExitCode(err))
	}
}
