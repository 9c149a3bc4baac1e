package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/carteira-app/carteira/internal/cli"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
		Long:  `List and add the accounts whose balances the ledger tracks.`,
	}

	cmd.AddCommand(listAccountsCmd())
	cmd.AddCommand(addAccountCmd())

	return cmd
}

func listAccountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			led, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			accounts, err := led.Accounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to list accounts: %w", err)
			}

			if len(accounts) == 0 {
				fmt.Println(cli.InfoStyle.Render("No accounts found. Use 'carteira accounts add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\n",
				cli.HeaderStyle.Render("ID"),
				cli.HeaderStyle.Render("Name"),
				cli.HeaderStyle.Render("Balance"))
			fmt.Fprintf(w, "%s\t%s\t%s\n",
				strings.Repeat("-", 4),
				strings.Repeat("-", 20),
				strings.Repeat("-", 12))

			for _, account := range accounts {
				fmt.Fprintf(w, "%d\t%s\t%s\n", account.ID, account.Name, cli.RenderAmount(account.Balance))
			}

			return nil
		},
	}
}

func addAccountCmd() *cobra.Command {
	var openingBalance string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			balance := decimal.Zero
			if openingBalance != "" {
				var err error
				if balance, err = parseAmount(openingBalance); err != nil {
					return err
				}
			}

			led, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			account, err := led.CreateAccount(ctx, args[0], balance)
			if err != nil {
				return fmt.Errorf("failed to create account: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("%s Account %q created with id %d", cli.SuccessIcon, account.Name, account.ID)))
			return nil
		},
	}

	cmd.Flags().StringVar(&openingBalance, "balance", "", "opening balance (default 0)")

	return cmd
}
