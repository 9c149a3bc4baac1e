package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/carteira-app/carteira/internal/cli"
	"github.com/carteira-app/carteira/internal/common"
	"github.com/carteira-app/carteira/internal/model"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Record transactions",
		Long:  `Record account entries (immediate funds) or card charges (invoice-tracked installments).`,
	}

	cmd.AddCommand(addTxCmd())
	cmd.AddCommand(chargeCmd())

	return cmd
}

func addTxCmd() *cobra.Command {
	var (
		accountID   int64
		kind        string
		category    string
		description string
		date        string
	)

	cmd := &cobra.Command{
		Use:   "add <amount>",
		Short: "Record an entry against an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			entryDate, err := parseDate(date)
			if err != nil {
				return err
			}

			led, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			txn, err := led.CreateAccountTransaction(ctx, accountID, model.TransactionKind(kind), category, description, entryDate, amount)
			if err != nil {
				return common.NewUserError("failed to record transaction", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("%s Transaction %d recorded (%s)",
				cli.SuccessIcon, txn.ID, txn.Amount.StringFixed(2))))
			return nil
		},
	}

	cmd.Flags().Int64Var(&accountID, "account", 0, "account id the entry belongs to")
	cmd.Flags().StringVar(&kind, "kind", "expense", "entry kind (expense, income)")
	cmd.Flags().StringVar(&category, "category", "", "category label")
	cmd.Flags().StringVar(&description, "description", "", "free-form description")
	cmd.Flags().StringVar(&date, "date", "", "entry date (YYYY-MM-DD, default today)")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func chargeCmd() *cobra.Command {
	var (
		cardID      int64
		parcels     int
		category    string
		description string
		date        string
		invoiceDate string
	)

	cmd := &cobra.Command{
		Use:   "charge <total>",
		Short: "Record a card purchase split into installments",
		Long: `Record a purchase on a credit card. The total is split evenly across the
requested number of installments, each billed to a successive invoice. The
first invoice follows the card's closing day unless --invoice-date overrides it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			total, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			purchaseDate, err := parseDate(date)
			if err != nil {
				return err
			}

			var chosenInvoice *time.Time
			if invoiceDate != "" {
				parsed, err := parseDate(invoiceDate)
				if err != nil {
					return err
				}
				chosenInvoice = &parsed
			}

			led, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			created, err := led.CreateCardTransaction(ctx, cardID, category, description, purchaseDate, total, parcels, chosenInvoice)
			if err != nil {
				return common.NewUserError("failed to record card purchase", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("%s Purchase of %s recorded as %d installment(s):",
				cli.SuccessIcon, total.StringFixed(2), len(created))))
			for _, txn := range created {
				fmt.Printf("  %d/%d  %s  due %s\n",
					txn.Parcel.Index, txn.Parcel.Count,
					cli.RenderAmount(txn.Amount),
					txn.InvoiceDate.Format("2006-01-02"))
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&cardID, "card", 0, "card id the purchase was made on")
	cmd.Flags().IntVar(&parcels, "parcels", 1, "number of installments")
	cmd.Flags().StringVar(&category, "category", "", "category label")
	cmd.Flags().StringVar(&description, "description", "", "free-form description")
	cmd.Flags().StringVar(&date, "date", "", "purchase date (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&invoiceDate, "invoice-date", "", "override the first invoice date (YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("card")

	return cmd
}
