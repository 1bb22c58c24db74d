package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var logLevel string

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "flightmarkets",
		Short: "Flight time statistics by year and market",
		Long: `flightmarkets computes per-year, per-market flight time statistics from
delimited on-time performance tables with a map/shuffle/reduce engine.
A market is the unordered airport pair of a flight, so DFW-PHX and
PHX-DFW land in the same group.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "trace|debug|info|warn|error")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newPreviewCmd())
	rootCmd.AddCommand(newGenCmd())
	rootCmd.AddCommand(newMasterCmd())
	rootCmd.AddCommand(newWorkerCmd())
	rootCmd.AddCommand(newSinkCmd())
	rootCmd.AddCommand(newWatchCmd())
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func getenvDefault(name, d string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return d
}

func getenvInt(name string, d int) int {
	v := os.Getenv(name)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return n
}

func getenvBool(name string, d bool) bool {
	v := os.Getenv(name)
	if v == "" {
		return d
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return d
	}
	return b
}
