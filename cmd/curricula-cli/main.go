package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/curricula-dev/curricula/cmd/curricula-cli/internal/commands"
)

var rootCmd = &cobra.Command{
	Use:   "curricula-cli",
	Short: "Inspect trajectory corpora and simulate curriculum schedules",
	Long: `A command-line interface for the curricula library: load trajectory
corpora, look at their difficulty profile, and dry-run the curriculum
scheduler against synthetic performance profiles before committing GPU time
to a real training run.`,
	Version: "0.1.0",
}

func main() {
	rootCmd.AddCommand(commands.NewSimulateCommand())
	rootCmd.AddCommand(commands.NewInspectCommand())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
