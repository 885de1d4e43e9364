package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dftest-dev/dftest/internal/infrastructure/container"
	infradataset "github.com/dftest-dev/dftest/internal/infrastructure/dataset"
	"github.com/dftest-dev/dftest/internal/infrastructure/system"
)

// CommandContext provides common command dependencies.
// Eliminates repetitive container initialization across CLI commands.
type CommandContext struct {
	Container *container.Container
	Logger    *slog.Logger
	Context   context.Context
}

// CommandHandler is a function that executes with initialized dependencies.
// Commands focus on business logic, not infrastructure setup.
type CommandHandler func(*CommandContext, *cobra.Command, []string) error

// withContainer wraps a command handler with container initialization.
// Handles common setup: config loading, logger creation, dependency injection.
//
// Usage:
//
//	cmd := &cobra.Command{
//	    Use: "check",
//	    RunE: withContainer(func(ctx *CommandContext, cmd *cobra.Command, args []string) error {
//	        return runCheck(ctx, cmd, args[0], checkOpts)
//	    }),
//	}
func withContainer(handler CommandHandler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		systemConfigPath, _ := cmd.Flags().GetString("system-config")
		if systemConfigPath == "" {
			systemConfigPath = system.DefaultPath()
		}

		csvOpts := infradataset.DefaultCSVOptions()
		if sep, _ := cmd.Flags().GetString("separator"); sep != "" {
			r, err := parseSeparator(sep)
			if err != nil {
				return err
			}
			csvOpts.Comma = r
		}

		logger := slog.Default()

		c, err := container.New(container.Options{
			SystemConfigPath: systemConfigPath,
			Logger:           logger,
			CSV:              csvOpts,
			Viewer:           viper.GetString("viewer"),
			Color:            colorEnabled(),
		})
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}

		ctx := &CommandContext{
			Container: c,
			Logger:    logger,
			Context:   cmd.Context(),
		}
		if ctx.Context == nil {
			ctx.Context = context.Background()
		}

		return handler(ctx, cmd, args)
	}
}

// addCommonFlags adds standard flags to a command.
// Ensures consistent flag naming across all commands.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("system-config", "", "Path to system settings (default is $HOME/.dftest/config.yaml)")
	cmd.Flags().String("separator", "", `CSV field separator (default: detected; use "\t" for tab)`)
}

// parseSeparator accepts a single character or the escapes \t and tab.
func parseSeparator(s string) (rune, error) {
	switch s {
	case `\t`, "tab":
		return '\t', nil
	}
	r := []rune(s)
	if len(r) != 1 {
		return 0, fmt.Errorf("invalid separator %q: must be a single character", s)
	}
	return r[0], nil
}

// colorEnabled honours the color setting and NO_COLOR.
func colorEnabled() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return viper.GetBool("color")
}
