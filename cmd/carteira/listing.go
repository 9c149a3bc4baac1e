package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/carteira-app/carteira/internal/cli"
	"github.com/carteira-app/carteira/internal/model"
	"github.com/carteira-app/carteira/internal/service"
)

func pendingCmd() *cobra.Command {
	var (
		origin   string
		category string
	)

	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List pending transactions",
		Long:  `Show unpaid transactions, newest first, with their invoice dates and installments.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			led, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			filter := &service.TransactionFilter{
				Origin:   model.OriginType(origin),
				Category: category,
			}

			transactions, err := led.ListPending(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list pending transactions: %w", err)
			}

			if len(transactions) == 0 {
				fmt.Println(cli.InfoStyle.Render("No pending transactions."))
				return nil
			}

			renderTransactions(transactions)
			return nil
		},
	}

	cmd.Flags().StringVar(&origin, "origin", "", "filter by origin (account, card)")
	cmd.Flags().StringVar(&category, "category", "", "filter by category")

	return cmd
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List settled transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			led, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			transactions, err := led.ListPaid(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list settled transactions: %w", err)
			}

			if len(transactions) == 0 {
				fmt.Println(cli.InfoStyle.Render("No settled transactions yet."))
				return nil
			}

			renderTransactions(transactions)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries to show")

	return cmd
}

func renderTransactions(transactions []model.Transaction) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		cli.HeaderStyle.Render("ID"),
		cli.HeaderStyle.Render("Date"),
		cli.HeaderStyle.Render("Description"),
		cli.HeaderStyle.Render("Amount"),
		cli.HeaderStyle.Render("Invoice"),
		cli.HeaderStyle.Render("Parcel"))
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
		strings.Repeat("-", 4),
		strings.Repeat("-", 10),
		strings.Repeat("-", 24),
		strings.Repeat("-", 10),
		strings.Repeat("-", 10),
		strings.Repeat("-", 6))

	for _, txn := range transactions {
		invoice := cli.SubtleStyle.Render("-")
		if txn.InvoiceDate != nil {
			invoice = txn.InvoiceDate.Format("2006-01-02")
		}
		parcel := cli.SubtleStyle.Render("-")
		if txn.Parcel != nil {
			parcel = fmt.Sprintf("%d/%d", txn.Parcel.Index, txn.Parcel.Count)
		}
		description := txn.Description
		if description == "" {
			description = cli.SubtleStyle.Render("(no description)")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			txn.ID,
			txn.Date.Format("2006-01-02"),
			description,
			cli.RenderAmount(txn.Amount),
			invoice,
			parcel)
	}
}
