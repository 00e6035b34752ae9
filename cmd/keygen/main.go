// Command keygen creates API key pairs for the custodial signer and,
// with the suborg command, a sub-organization holding a Solana wallet.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/AlexZinkM/trade-relay/internal/config"
	"github.com/AlexZinkM/trade-relay/internal/logger"
	"github.com/AlexZinkM/trade-relay/internal/model"
	"github.com/AlexZinkM/trade-relay/internal/turnkey"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a P-256 API key pair",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pair, err := turnkey.GenerateAPIKeyPair()
		if err != nil {
			return err
		}
		return printJSON(pair)
	},
}

var suborgFlags struct {
	name     string
	userName string
	wallet   string
	tgUserID string
}

var suborgCmd = &cobra.Command{
	Use:   "suborg",
	Short: "Create a sub-organization with a fresh API key and Solana wallet",
	Long: `Creates a sub-organization under TURNKEY_ORGANIZATION_ID, signed with
TURNKEY_API_PUBLIC_KEY and TURNKEY_API_PRIVATE_KEY. The output is the body
of PUT /users/{id} for the new user. Only the signer settings and
HTTP_TIMEOUT are read, .env included.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadTurnkeyTool()
		if err != nil {
			return err
		}

		pair, err := turnkey.GenerateAPIKeyPair()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		tk := turnkey.NewClient(cfg.TurnkeyAPIURL, cfg.HTTPTimeout, logger.Discard())
		sub, err := tk.CreateSubOrganization(ctx, model.UserCredential{
			PublicKey:      cfg.TurnkeyAPIPublicKey,
			PrivateKey:     cfg.TurnkeyAPIPrivateKey,
			OrganizationID: cfg.TurnkeyOrgID,
		}, turnkey.SubOrganizationRequest{
			Name:       suborgFlags.name,
			UserName:   suborgFlags.userName,
			APIKey:     turnkey.NewAPIKey{Name: suborgFlags.name + "_root", PublicKey: pair.PublicKey},
			WalletName: suborgFlags.wallet,
		})
		if err != nil {
			return err
		}

		return printJSON(model.UserRequest{
			TelegramUserID: suborgFlags.tgUserID,
			UserID:         sub.RootUserID,
			SubOrgID:       sub.ID,
			PublicKey:      pair.PublicKey,
			PrivateKey:     pair.PrivateKey,
			WalletAddress:  sub.WalletAddress,
		})
	},
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	suborgCmd.Flags().StringVar(&suborgFlags.tgUserID, "tg-user", "", "Telegram user ID")
	suborgCmd.Flags().StringVar(&suborgFlags.name, "name", "", "sub-organization name")
	suborgCmd.Flags().StringVar(&suborgFlags.userName, "user", "telegram-user", "root user name")
	suborgCmd.Flags().StringVar(&suborgFlags.wallet, "wallet", "Solana Wallet", "wallet name")
	_ = suborgCmd.MarkFlagRequired("tg-user")
	_ = suborgCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(suborgCmd)
}
