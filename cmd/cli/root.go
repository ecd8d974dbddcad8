// Package cli implements the suitability-admin command tree.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the base command used when `suitability-admin` is called without
// any subcommands. Each call returns a fresh tree, so flags never leak between runs.
// NewRootCommand 构建在没有任何子命令的情况下调用 `suitability-admin` 时的基本命令。
// 每次调用都返回一棵新的命令树，因此标志不会在多次运行之间泄漏。
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "suitability-admin",
		Short: "A CLI tool for administering the suitability scoring service.",
		Long: `suitability-admin is a command-line interface for offline tasks on the
suitability service, such as checking tenant configurations before they are
uploaded, scoring questionnaires against a configuration file and reporting on
the tenants held by the SQL store.`,
		SilenceUsage: true,
	}
	root.AddCommand(newTenantCommand(), newScoreCommand())
	return root
}

// Execute is the main entry point for the CLI application.
// It parses the command-line arguments and executes the appropriate command.
// If an error occurs, it prints the error and exits.
// Execute 是 CLI 应用程序的主入口点。
// 它解析命令行参数并执行相应的命令。如果发生错误，它会打印错误并退出。
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func readJSONFile(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
