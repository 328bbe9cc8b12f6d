package main

import (
	"encoding/hex"
	"fmt"

	"github.com/dimchat/dim-go/crypto"
	"github.com/dimchat/dim-go/mkm"
	"github.com/spf13/cobra"
)

var identityCmd = &cobra.Command{
	Use:   "identity",
	Short: "Generate a new local identity",
	RunE:  runIdentity,
}

var identitySeed string

func init() {
	identityCmd.Flags().StringVar(&identitySeed, "seed", "", "username seed bound into the meta fingerprint")
	rootCmd.AddCommand(identityCmd)
}

func runIdentity(cmd *cobra.Command, args []string) error {
	priv, err := crypto.GenerateECCPrivateKey()
	if err != nil {
		return fmt.Errorf("generate private key: %w", err)
	}
	meta, err := mkm.GenerateMeta(mkm.MetaMKM, priv, identitySeed)
	if err != nil {
		return fmt.Errorf("generate meta: %w", err)
	}
	addr, err := meta.GenerateAddress(mkm.User)
	if err != nil {
		return fmt.Errorf("derive address: %w", err)
	}
	id := mkm.IDFromAddress(identitySeed, addr)

	fmt.Fprintf(cmd.OutOrStdout(), "id:          %s\n", id.String())
	fmt.Fprintf(cmd.OutOrStdout(), "private_key: %s\n", hex.EncodeToString(priv.Bytes()))
	return nil
}
