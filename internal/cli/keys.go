package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goPriceOracle/internal/crypto"
	"github.com/LeJamon/goPriceOracle/internal/keystore"
)

var keyType string

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage signing identities",
}

var keysGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a signing identity",
	Long: `Generate a random signing identity and print its seed, public key and
address. Add the seed to [keys] identities and the address to [signers]
accounts to let the node submit prices with it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kt, err := crypto.ParseKeyType(keyType)
		if err != nil {
			return err
		}
		id, err := keystore.Generate(kt)
		if err != nil {
			return err
		}
		return printIdentity(cmd, id)
	},
}

var keysShowCmd = &cobra.Command{
	Use:   "show <seed>",
	Short: "Show the identity derived from a hex seed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kt, err := crypto.ParseKeyType(keyType)
		if err != nil {
			return err
		}
		id, err := keystore.FromSeedHex(kt, args[0])
		if err != nil {
			return err
		}
		return printIdentity(cmd, id)
	},
}

func printIdentity(cmd *cobra.Command, id *keystore.Identity) error {
	out, err := json.MarshalIndent(map[string]string{
		"key_type":   id.KeyType().String(),
		"seed":       id.SeedHex(),
		"public_key": id.PublicKeyHex(),
		"address":    id.Address(),
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func init() {
	keysCmd.PersistentFlags().StringVar(&keyType, "key-type", "ed25519", "key type (ed25519 or secp256k1)")
	keysCmd.AddCommand(keysGenerateCmd, keysShowCmd)
	rootCmd.AddCommand(keysCmd)
}
