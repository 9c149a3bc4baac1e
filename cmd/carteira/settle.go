package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/carteira-app/carteira/internal/cli"
	"github.com/carteira-app/carteira/internal/common"
)

func settleCmd() *cobra.Command {
	var payingAccountID int64

	cmd := &cobra.Command{
		Use:   "settle <transaction-id>...",
		Short: "Settle pending transactions",
		Long: `Mark pending transactions as paid and apply their balance effects.
Card-originated entries are paid from the account given with --from; entries
recorded directly against an account always settle against that account.
Resubmitting already-settled ids is harmless.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := strconv.ParseInt(arg, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid transaction id %q: %w", arg, err)
				}
				ids = append(ids, id)
			}

			var payer *int64
			if cmd.Flags().Changed("from") {
				payer = &payingAccountID
			}

			led, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := led.Settle(ctx, ids, payer)
			if err != nil {
				return common.NewUserError("settlement failed", err)
			}

			if len(result.UpdatedTransactions) == 0 {
				fmt.Println(cli.InfoStyle.Render("Nothing to settle: all requested transactions were already paid."))
				return nil
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("%s Settled %d transaction(s)",
				cli.SuccessIcon, len(result.UpdatedTransactions))))
			for _, account := range result.UpdatedAccounts {
				fmt.Printf("  %s %s: new balance %s\n", cli.WalletIcon, account.Name, cli.RenderAmount(account.Balance))
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&payingAccountID, "from", 0, "account id that pays card-originated entries")

	return cmd
}
