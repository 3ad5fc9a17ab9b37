// ledgerconnect es la CLI de utilidades del servicio: generación de claves,
// inspección de tokens y apertura de códigos de challenge en dev.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/ledgerconnect/internal/keys"
	"github.com/dropDatabas3/ledgerconnect/internal/token"
)

func main() {
	root := &cobra.Command{
		Use:           "ledgerconnect",
		Short:         "Utilidades de LedgerConnect",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(keysCmd(), tokenCmd(), memoCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manejo de claves secp256k1",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "gen",
		Short: "Genera un par de claves nuevo (WIF + pública)",
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := keys.GeneratePrivateKey()
			if err != nil {
				return err
			}
			fmt.Println("wif:   ", priv.WIF())
			fmt.Println("public:", priv.Public().String())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "pub <wif>",
		Short: "Deriva la clave pública de un WIF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := keys.ParsePrivateKeyWIF(args[0])
			if err != nil {
				return err
			}
			fmt.Println(priv.Public().String())
			return nil
		},
	})

	return cmd
}

func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Inspección de credenciales",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "decode <token>",
		Short: "Decodifica una credencial sin verificar la firma",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := token.Decode(args[0])
			if err != nil {
				return err
			}
			out := map[string]any{
				"payload":     a.Payload,
				"signatures":  a.Signatures,
				"issued_at":   time.Unix(a.Payload.IssuedAt, 0).UTC().Format(time.RFC3339),
				"fingerprint": token.Fingerprint(args[0]),
			}
			b, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(b))
			return nil
		},
	})

	return cmd
}

func memoCmd() *cobra.Command {
	var wif, pub string

	cmd := &cobra.Command{
		Use:   "memo",
		Short: "Códigos de challenge sellados",
	}

	open := &cobra.Command{
		Use:   "open <code>",
		Short: "Descifra un código con tu WIF y la pública de la contraparte",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			priv, err := keys.ParsePrivateKeyWIF(wif)
			if err != nil {
				return err
			}
			counterpart, err := keys.ParsePublicKey(pub)
			if err != nil {
				return err
			}
			msg, err := keys.Open(priv, counterpart, args[0])
			if err != nil {
				return err
			}
			fmt.Println(string(msg))
			return nil
		},
	}
	open.Flags().StringVar(&wif, "wif", "", "clave privada WIF propia")
	open.Flags().StringVar(&pub, "pub", "", "clave pública de la contraparte")
	_ = open.MarkFlagRequired("wif")
	_ = open.MarkFlagRequired("pub")

	cmd.AddCommand(open)
	return cmd
}
