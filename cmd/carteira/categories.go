package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carteira-app/carteira/internal/cli"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			led, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			categories, err := led.Categories(ctx)
			if err != nil {
				return fmt.Errorf("failed to list categories: %w", err)
			}

			if len(categories) == 0 {
				fmt.Println(cli.InfoStyle.Render("No categories found."))
				return nil
			}

			for _, category := range categories {
				fmt.Printf("%d\t%s\n", category.ID, category.Name)
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a new category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			led, cleanup, err := openLedger(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			category, err := led.CreateCategory(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to create category: %w", err)
			}

			fmt.Println(cli.SuccessStyle.Render(fmt.Sprintf("%s Category %q created with id %d", cli.SuccessIcon, category.Name, category.ID)))
			return nil
		},
	})

	return cmd
}
