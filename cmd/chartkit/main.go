// Command chartkit renders, serves and plays reactive charts.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/chartkit/internal/cli"
	charterr "github.com/matzehuels/chartkit/pkg/errors"
)

// Exit statuses. A bad spec or data file is distinguished from a failure to
// produce output so scripts can tell the two apart.
const (
	exitFailure     = 1
	exitBadInput    = 2
	exitUnsupported = 3
	exitInterrupted = 130
)

// Set with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var version, commit, date string

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cli.SetVersion(version, commit, date)
	if err := run(ctx, os.Args[1:]); err != nil {
		code := exitCode(err)
		if code != exitInterrupted {
			fmt.Fprintln(os.Stderr, "chartkit:", err)
		}
		os.Exit(code)
	}
}

func run(ctx context.Context, args []string) error {
	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true
	root.SetArgs(args)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// The level is only known once flags are parsed.
	preRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		return preRun(cmd, args)
	}

	return root.ExecuteContext(ctx)
}

// exitCode maps err to the process exit status.
func exitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return exitInterrupted
	}
	switch charterr.GetCode(err) {
	case charterr.ErrCodeInvalidInput, charterr.ErrCodeInvalidConfig,
		charterr.ErrCodeInvalidChartKind, charterr.ErrCodeInvalidFormat,
		charterr.ErrCodeDomain, charterr.ErrCodeMissingField,
		charterr.ErrCodeNotFound:
		return exitBadInput
	case charterr.ErrCodeUnsupported:
		return exitUnsupported
	}
	return exitFailure
}
