package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Defnoch/finance/internal/rules"
)

func categorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Categorize transactions with the rule set",
	}
	cmd.AddCommand(categorizeRunCmd())
	cmd.AddCommand(categorizeAssignCmd())
	cmd.AddCommand(categorizeUnassignCmd())
	return cmd
}

func categorizeRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run one rule pass over uncategorized transactions",
		Long: `Load all enabled rules and every transaction without a category, match
each transaction against the rules in priority order, and persist the
winning assignments. Safe to repeat: categorized transactions are never
touched again.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			report, err := rules.NewRunner(store, nil).Run(ctx)
			if err != nil {
				return err
			}
			cmd.Printf("Scanned:  %d\n", report.Scanned)
			cmd.Printf("Assigned: %d\n", report.Assigned)
			cmd.Printf("Skipped:  %d\n", report.Skipped)
			return nil
		},
	}
}

func categorizeAssignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "assign <transaction-id> <category-name>",
		Short: "Assign a category to one transaction",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			category, err := store.GetCategoryByName(ctx, args[1])
			if err != nil {
				return fmt.Errorf("unknown category %q: %w", args[1], err)
			}
			if err := store.AssignCategory(ctx, args[0], category.ID); err != nil {
				return err
			}
			cmd.Printf("Assigned %s to %s\n", category.Name, args[0])
			return nil
		},
	}
}

func categorizeUnassignCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <transaction-id>",
		Short: "Clear the category of one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.UnassignCategory(ctx, args[0]); err != nil {
				return err
			}
			cmd.Printf("Cleared category of %s\n", args[0])
			return nil
		},
	}
}
