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

func cardsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Manage credit cards",
		Long:  `List and add credit cards with their billing cycle parameters.`,
	}

	cmd.AddCommand(listCardsCmd())
	cmd.AddCommand(addCardCmd())

	return cmd
}

func listCardsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all cards",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			led, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			cards, err := led.Cards(ctx)
			if err != nil {
				return fmt.Errorf("failed to list cards: %w", err)
			}

			if len(cards) == 0 {
				fmt.Println(cli.InfoStyle.Render("No cards found. Use 'carteira cards add' to create one."))
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			defer w.Flush()

			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				cli.HeaderStyle.Render("ID"),
				cli.HeaderStyle.Render("Name"),
				cli.HeaderStyle.Render("Limit"),
				cli.HeaderStyle.Render("Closes"),
				cli.HeaderStyle.Render("Due"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				strings.Repeat("-", 4),
				strings.Repeat("-", 20),
				strings.Repeat("-", 12),
				strings.Repeat("-", 6),
				strings.Repeat("-", 6))

			for _, card := range cards {
				fmt.Fprintf(w, "%d\t%s %s\t%s\tday %d\tday %d\n",
					card.ID, cli.CardIcon, card.Name, card.Limit.StringFixed(2), card.ClosingDay, card.DueDay)
			}

			return nil
		},
	}
}

func addCardCmd() *cobra.Command {
	var (
		limit      string
		closingDay int
		dueDay     int
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a new card",
		Long:  `Create a credit card. Closing and due days must fall between 1 and 28.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cardLimit := decimal.Zero
			if limit != "" {
				var err error
				if cardLimit, err = parseAmount(limit); err != nil {
					return err
				}
			}

			led, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			card, err := led.CreateCard(ctx, args[0], cardLimit, closingDay, dueDay)
			if err != nil {
				return fmt.Errorf("failed to create card: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("%s Card %q created with id %d (closes day %d, due day %d)",
				cli.SuccessIcon, card.Name, card.ID, card.ClosingDay, card.DueDay)))
			return nil
		},
	}

	cmd.Flags().StringVar(&limit, "limit", "", "credit limit")
	cmd.Flags().IntVar(&closingDay, "closing-day", 1, "day of month the cycle closes (1-28)")
	cmd.Flags().IntVar(&dueDay, "due-day", 10, "day of month the invoice is due (1-28)")

	return cmd
}
