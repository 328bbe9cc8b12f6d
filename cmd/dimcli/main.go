package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dimcli",
	Short: "DIM client SDK CLI - identity and send operations",
	Long: `dimcli drives the DIM client SDK core from the command line:
generating a local identity and sending text to a peer through a
station. It has no command for listening to inbound messages.`,
}

func main() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
