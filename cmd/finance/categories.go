package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Defnoch/finance/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage spending categories",
	}
	cmd.AddCommand(categoriesListCmd())
	cmd.AddCommand(categoriesAddCmd())
	cmd.AddCommand(categoriesRemoveCmd())
	return cmd
}

func categoriesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			categories, err := store.GetCategories(ctx)
			if err != nil {
				return err
			}
			for _, c := range categories {
				cmd.Printf("%-20s %-8s %s\n", c.Name, c.Kind, c.ColorHex)
			}
			return nil
		},
	}
}

func categoriesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kindFlag, _ := cmd.Flags().GetString("kind")
			color, _ := cmd.Flags().GetString("color")

			kind := model.CategoryKindExpense
			if kindFlag == "income" {
				kind = model.CategoryKindIncome
			}

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			category := &model.Category{
				ID:        uuid.New().String(),
				Name:      args[0],
				Kind:      kind,
				ColorHex:  color,
				CreatedAt: time.Now().UTC(),
			}
			if err := store.CreateCategory(ctx, category); err != nil {
				return err
			}
			cmd.Printf("Created category %s\n", category.Name)
			return nil
		},
	}
	cmd.Flags().String("kind", "expense", "category kind (expense, income)")
	cmd.Flags().String("color", "", "display color, e.g. #4CAF50")
	return cmd
}

func categoriesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Remove a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			category, err := store.GetCategoryByName(ctx, args[0])
			if err != nil {
				return err
			}
			if err := store.DeleteCategory(ctx, category.ID); err != nil {
				return err
			}
			cmd.Printf("Removed category %s\n", category.Name)
			return nil
		},
	}
}
