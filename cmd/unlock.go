package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-bde/pkg/bde"
)

var unlockCreds credentialFlags

var unlockCmd = &cobra.Command{
	Use:   "unlock [volume-path]",
	Short: "Verify that a credential unlocks a volume",
	Long: `Attempt to unlock a BDE volume with the given credential and report
success or failure, without reading any plaintext.

Examples:
  go-bde unlock disk.img --recovery-password 111583-136634-584563-390915-680608-671511-398274-615517`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUnlock(args[0])
	},
}

func init() {
	rootCmd.AddCommand(unlockCmd)
	addCredentialFlags(unlockCmd, &unlockCreds)
}

func runUnlock(path string) error {
	v, err := bde.OpenFile(path, nil)
	if err != nil {
		return err
	}
	defer v.Close()

	if err := applyCredentials(v, &unlockCreds); err != nil {
		return fmt.Errorf("unlock failed: %w", err)
	}

	fmt.Printf("unlocked: size=%d bytes, method=%s\n", v.Size(), v.EncryptionMethod())
	return nil
}
