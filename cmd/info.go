package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-bde/pkg/bde"
)

var infoCreds credentialFlags

var infoCmd = &cobra.Command{
	Use:   "info [volume-path]",
	Short: "Show volume header and key-protector metadata",
	Long: `Show a BDE volume's lock state, encryption method, identifier,
description and key protectors; the format version is not shown.
Works without any credential; the volume size is only
known once unlocking has parsed it out of the decrypted boot sector.

Examples:
  go-bde info /dev/sdb1
  go-bde info disk.img --password hunter2`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInfo(args[0])
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
	addCredentialFlags(infoCmd, &infoCreds)
}

func runInfo(path string) error {
	v, err := bde.OpenFile(path, nil)
	if err != nil {
		return err
	}
	defer v.Close()

	if err := applyCredentials(v, &infoCreds); err != nil && verbose {
		fmt.Printf("unlock: %v\n", err)
	}

	fmt.Printf("locked:               %v\n", v.IsLocked())
	fmt.Printf("encryption method:    %s\n", v.EncryptionMethod())
	fmt.Printf("volume identifier:    %s\n", v.VolumeIdentifier())
	if d := v.Description(); d != "" {
		fmt.Printf("description:          %s\n", d)
	}
	if !v.IsLocked() {
		fmt.Printf("size:                 %d bytes\n", v.Size())
	}

	n := v.NumberOfKeyProtectors()
	fmt.Printf("key protectors (%d):\n", n)
	for i := 0; i < n; i++ {
		p, err := v.KeyProtector(i)
		if err != nil {
			return err
		}
		fmt.Printf("  [%d] %-24s %s\n", i, p.ProtectionType(), p.DisplayName())
	}

	return nil
}
