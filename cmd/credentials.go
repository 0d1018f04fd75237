package cmd

import (
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/deploymenttheory/go-bde/pkg/bde"
)

// credentialFlags groups the unlocking-credential flags shared by every
// command that needs an unlocked Volume, following the teacher's
// per-command flag-variable grouping (cmd/list.go).
type credentialFlags struct {
	password         string
	recoveryPassword string
	startupKeyPath   string
	fvekHex          string
	tweakHex         string
	expectVolumeID   string
}

func addCredentialFlags(cmd *cobra.Command, f *credentialFlags) {
	cmd.Flags().StringVar(&f.password, "password", "", "unlock using a user password")
	cmd.Flags().StringVar(&f.recoveryPassword, "recovery-password", "", "unlock using a 48-digit recovery password")
	cmd.Flags().StringVar(&f.startupKeyPath, "startup-key", "", "unlock using a .BEK startup-key file")
	cmd.Flags().StringVar(&f.fvekHex, "fvek-hex", "", "unlock using an explicit hex-encoded FVEK")
	cmd.Flags().StringVar(&f.tweakHex, "tweak-hex", "", "hex-encoded tweak key, paired with --fvek-hex")
	cmd.Flags().StringVar(&f.expectVolumeID, "expect-volume-id", "",
		"abort unless the volume's identifier matches this GUID (guards against pointing a scripted unlock at the wrong disk)")

	cmd.MarkFlagsMutuallyExclusive("password", "recovery-password", "startup-key", "fvek-hex")
}

// verifyVolumeIdentifier checks v's on-disk volume identifier against
// expect, a canonical GUID string. Comparing the canonical string forms
// sidesteps the GUID's mixed-endian on-disk layout entirely: two GUIDs are
// equal iff their String() renderings are.
func verifyVolumeIdentifier(v *bde.Volume, expect string) error {
	if expect == "" {
		return nil
	}
	want, err := uuid.Parse(expect)
	if err != nil {
		return fmt.Errorf("invalid --expect-volume-id: %w", err)
	}
	if got := v.VolumeIdentifier().String(); got != want.String() {
		return fmt.Errorf("volume identifier %s does not match --expect-volume-id %s", got, want)
	}
	return nil
}

// applyCredentials installs whichever credential flags the caller set on
// v, then unlocks it. A volume with a clear-key protector unlocks even
// with no flags set at all.
func applyCredentials(v *bde.Volume, f *credentialFlags) error {
	if err := verifyVolumeIdentifier(v, f.expectVolumeID); err != nil {
		return err
	}

	switch {
	case f.password != "":
		if err := v.SetPassword(f.password); err != nil {
			return err
		}
	case f.recoveryPassword != "":
		if err := v.SetRecoveryPassword(f.recoveryPassword); err != nil {
			return err
		}
	case f.startupKeyPath != "":
		if err := v.ReadStartupKey(f.startupKeyPath); err != nil {
			return err
		}
	case f.fvekHex != "":
		fvek, err := hex.DecodeString(f.fvekHex)
		if err != nil {
			return fmt.Errorf("invalid --fvek-hex: %w", err)
		}
		var tweak []byte
		if f.tweakHex != "" {
			tweak, err = hex.DecodeString(f.tweakHex)
			if err != nil {
				return fmt.Errorf("invalid --tweak-hex: %w", err)
			}
		}
		if err := v.SetKeys(fvek, tweak); err != nil {
			return err
		}
	}

	return v.Unlock()
}
