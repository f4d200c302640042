package main

import (
	"encoding/hex"
	"fmt"

	"gnsnode/pkg/envelope"

	"github.com/spf13/cobra"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Print a fresh Ed25519 identity keypair and X25519 encryption keypair as hex",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := envelope.GenerateIdentity()
		if err != nil {
			return err
		}
		enc, err := envelope.GenerateEncryptionKey()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "identity_public_key:   %s\n", id.PublicHex)
		fmt.Fprintf(out, "identity_private_key:  %s\n", hex.EncodeToString(id.PrivateKey))
		fmt.Fprintf(out, "encryption_public_key: %s\n", enc.PublicHex)
		fmt.Fprintf(out, "encryption_private_key: %s\n", hex.EncodeToString(enc.PrivateKey))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keygenCmd)
}
