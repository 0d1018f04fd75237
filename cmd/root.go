package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global output flags only
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "go-bde",
	Short: "Read-only command-line access to BitLocker Drive Encryption volumes",
	Long: `go-bde is a read-only command-line tool for inspecting and reading
BitLocker Drive Encryption (BDE) volumes: raw disks, partitions, or image
files, without a Windows host.

Commands:
  info      Show volume header and key-protector metadata
  unlock    Verify that a credential unlocks a volume
  cat       Write decrypted volume bytes to stdout`,
	Version: "0.1.0-dev",
}

// Execute adds all child commands to the root command and runs it.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format (accepted but unused: every command prints plain text)")
}
