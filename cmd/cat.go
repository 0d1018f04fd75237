package cmd

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-bde/pkg/bde"
)

var (
	catCreds  credentialFlags
	catOffset int64
	catLength int64
)

var catCmd = &cobra.Command{
	Use:   "cat [volume-path]",
	Short: "Write decrypted volume bytes to stdout",
	Long: `Unlock a BDE volume and write its decrypted plaintext to stdout,
starting at --offset for up to --length bytes (0 means to the end).

Examples:
  go-bde cat disk.img --password hunter2 --offset 0 --length 512 > boot-sector.bin`,

	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCat(args[0])
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
	addCredentialFlags(catCmd, &catCreds)
	catCmd.Flags().Int64Var(&catOffset, "offset", 0, "starting logical byte offset")
	catCmd.Flags().Int64Var(&catLength, "length", 0, "number of bytes to read (0 = to end of volume)")
}

func runCat(path string) error {
	v, err := bde.OpenFile(path, nil)
	if err != nil {
		return err
	}
	defer v.Close()

	if err := applyCredentials(v, &catCreds); err != nil {
		return err
	}

	if _, err := v.Seek(catOffset, io.SeekStart); err != nil {
		return err
	}

	var r io.Reader = v
	if catLength > 0 {
		r = io.LimitReader(v, catLength)
	}

	_, err = io.Copy(os.Stdout, r)
	return err
}
