package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Defnoch/finance/internal/model"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Manage categorization rules",
	}
	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesRemoveCmd())
	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List rules in evaluation order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			ruleSet, err := store.GetRules(ctx)
			if err != nil {
				return err
			}
			for _, r := range ruleSet {
				state := "enabled"
				if !r.IsEnabled {
					state = "disabled"
				}
				if r.IsIgnored {
					state += ", ignore"
				}
				cmd.Printf("%-30s priority=%-4d (%s)\n", r.Name, r.Priority, state)
				for _, c := range r.Conditions {
					cmd.Printf("    %s %s %q\n", c.Field, c.Operator, c.Value)
				}
			}
			return nil
		},
	}
}

func rulesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a rule",
		Long: `Add a categorization rule. Conditions are field:operator:value triples,
for example:

  finance rules add "Albert Heijn" --category Groceries \
      --condition "counterpartyName:contains:heijn" \
      --condition "direction:equals:Debit" --priority 10`,
		Args: cobra.ExactArgs(1),
		RunE: runRulesAdd,
	}
	cmd.Flags().String("category", "", "category name to assign on match")
	cmd.Flags().StringArray("condition", nil, "condition as field:operator:value (repeatable)")
	cmd.Flags().Int("priority", 0, "rule priority, higher wins")
	cmd.Flags().Bool("ignore", false, "skip matched transactions instead of categorizing")
	return cmd
}

func runRulesAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	categoryName, _ := cmd.Flags().GetString("category")
	conditionSpecs, _ := cmd.Flags().GetStringArray("condition")
	priority, _ := cmd.Flags().GetInt("priority")
	ignore, _ := cmd.Flags().GetBool("ignore")

	if len(conditionSpecs) == 0 {
		return fmt.Errorf("at least one --condition is required")
	}
	if categoryName == "" && !ignore {
		return fmt.Errorf("either --category or --ignore is required")
	}

	var conditions []model.RuleCondition
	for _, spec := range conditionSpecs {
		parts := strings.SplitN(spec, ":", 3)
		if len(parts) != 3 {
			return fmt.Errorf("invalid condition %q, want field:operator:value", spec)
		}
		conditions = append(conditions, model.RuleCondition{
			ID:       uuid.New().String(),
			Field:    parts[0],
			Operator: parts[1],
			Value:    parts[2],
		})
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	rule := &model.CategorizationRule{
		ID:         uuid.New().String(),
		Name:       args[0],
		Conditions: conditions,
		Priority:   priority,
		IsEnabled:  true,
		IsIgnored:  ignore,
		CreatedAt:  time.Now().UTC(),
	}
	if categoryName != "" {
		category, err := store.GetCategoryByName(ctx, categoryName)
		if err != nil {
			return fmt.Errorf("unknown category %q: %w", categoryName, err)
		}
		rule.CategoryID = category.ID
	}

	if err := store.CreateRule(ctx, rule); err != nil {
		return err
	}
	cmd.Printf("Created rule %s\n", rule.Name)
	return nil
}

func rulesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <rule-id>",
		Short: "Remove a rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteRule(ctx, args[0]); err != nil {
				return err
			}
			cmd.Printf("Removed rule %s\n", args[0])
			return nil
		},
	}
}
