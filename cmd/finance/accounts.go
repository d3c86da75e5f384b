package main

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func accountsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accounts",
		Short: "List known accounts and their fiscal years",
		RunE:  runAccounts,
	}
}

func runAccounts(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	accounts, err := store.GetAllAccounts(ctx)
	if err != nil {
		return err
	}
	for _, account := range accounts {
		years, err := store.GetFiscalYears(ctx, account.ID)
		if err != nil {
			return err
		}
		formatted := make([]string, 0, len(years))
		for _, y := range years {
			formatted = append(formatted, strconv.Itoa(y))
		}
		cmd.Printf("%-10s %-25s %-8s %s\n",
			account.Provider, account.Identifier, account.Kind, strings.Join(formatted, " "))
	}
	return nil
}
