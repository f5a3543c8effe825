package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	lkerrors "ledgerkit/internal/errors"
	"ledgerkit/internal/harness"
	"ledgerkit/internal/runtime"
)

// version is set at build time via ldflags
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "ledgerkit",
	Short:   "LedgerKit - containerized test ledger for integration testing",
	Version: version,
	Long: `LedgerKit launches a containerized blockchain node for integration
testing, waits until the node's own health check passes, and tears it down
deterministically when the test run is over.`,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start the test ledger and wait until it is healthy",
	Long: `Up parses a manifest YAML file, launches the configured ledger image with
all ports published dynamically, and blocks until the container reports
healthy. The container id is recorded so 'down', 'status' and 'ip' can find
the instance later.`,
	Run: func(cmd *cobra.Command, args []string) {
		file, _ := cmd.Flags().GetString("file")
		if file == "" {
			fmt.Fprintln(os.Stderr, "Error: --file flag is required")
			os.Exit(1)
		}

		rt := newRuntime()
		if err := harness.Up(context.Background(), rt, file); err != nil {
			lkerrors.HandleError(err)
			os.Exit(1)
		}
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop and remove the test ledger",
	Long: `Down stops and removes the container recorded by a previous 'up' and
deletes the state file.`,
	Run: func(cmd *cobra.Command, args []string) {
		rt := newRuntime()
		if err := harness.Down(context.Background(), rt); err != nil {
			lkerrors.HandleError(err)
			os.Exit(1)
		}
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the runtime status of the test ledger",
	Run: func(cmd *cobra.Command, args []string) {
		rt := newRuntime()
		info, err := harness.Status(context.Background(), rt)
		if err != nil {
			lkerrors.HandleError(err)
			os.Exit(1)
		}

		fmt.Printf("Container: %s\n", info.ID)
		fmt.Printf("State:     %s\n", info.State)
		fmt.Printf("Status:    %s\n", info.Status)
		for _, network := range info.Networks {
			fmt.Printf("Network:   %s %s\n", network.Name, network.IPAddress)
		}
	},
}

var ipCmd = &cobra.Command{
	Use:   "ip",
	Short: "Print the test ledger's container IP address",
	Run: func(cmd *cobra.Command, args []string) {
		rt := newRuntime()
		ipAddress, err := harness.IPAddress(context.Background(), rt)
		if err != nil {
			lkerrors.HandleError(err)
			os.Exit(1)
		}
		fmt.Println(ipAddress)
	},
}

func newRuntime() *runtime.DockerRuntime {
	rt, err := runtime.NewDockerRuntime()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating Docker runtime: %s\n", err)
		os.Exit(1)
	}
	return rt
}

func init() {
	upCmd.Flags().StringP("file", "f", "", "Path to the manifest YAML file (required)")
	if err := upCmd.MarkFlagRequired("file"); err != nil {
		slog.Error("Failed to mark file flag as required for up command", "error", err)
	}
	rootCmd.AddCommand(upCmd)

	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(ipCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
