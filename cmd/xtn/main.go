package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	convertcmd "github.com/walteh/xtn/cmd/xtn/convert"
	"github.com/walteh/xtn/cmd/xtn/format"
	get_diagnostics "github.com/walteh/xtn/cmd/xtn/get-diagnostics"
	get_scope "github.com/walteh/xtn/cmd/xtn/get-scope"
	"github.com/walteh/xtn/pkg/logging"
)

func main() {
	if err := run(context.Background(), afero.NewOsFs(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		println(err.Error())
		os.Exit(1)
	}
}

func run(ctx context.Context, fs afero.Fs, args []string, stdout, stderr io.Writer) error {
	rootCmd := newRootCommand(fs)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return errors.Errorf("failed to execute command: %w", err)
	}

	return nil
}

func newRootCommand(fs afero.Fs) *cobra.Command {
	var debugLogs bool

	rootCmd := &cobra.Command{
		Use:   "xtn",
		Short: "Tools for xtn documents",
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		rootCmd.Version = "unknown"
	} else {
		rootCmd.Version = info.Main.Version
	}

	rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "config file (default: the closest .xtn.hcl or .xtn.yaml)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		logger := logging.New(cmd.ErrOrStderr(), logging.Options{
			Debug:  debugLogs,
			Color:  !color.NoColor,
			Caller: debugLogs,
		})
		cmd.SetContext(logger.WithContext(cmd.Context()))
		return nil
	}

	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true

	cmdVersion := &cobra.Command{
		Use: "raw-version",
		Run: func(cmdz *cobra.Command, args []string) {
			fmt.Fprintln(cmdz.OutOrStdout(), rootCmd.Version)
		},
		Hidden: true,
	}

	rootCmd.AddCommand(cmdVersion)

	rootCmd.AddCommand(format.NewFormatCommand(fs))
	rootCmd.AddCommand(get_diagnostics.NewGetDiagnosticsCommand(fs))
	rootCmd.AddCommand(get_scope.NewGetScopeCommand(fs))
	rootCmd.AddCommand(convertcmd.NewConvertCommand(fs))

	return rootCmd
}
