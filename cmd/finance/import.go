package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Defnoch/finance/internal/bankfile"
	"github.com/Defnoch/finance/internal/importer"
	"github.com/Defnoch/finance/internal/model"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a bank CSV export",
		Long: `Parse a bank export file and persist its transactions.

The file format is resolved from --source or, failing that, from the file
name. Rows imported before (same source reference) are counted as
duplicates and skipped. With --override, previously imported transactions
for the accounts in the file are deleted first and the file is imported
fresh.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().String("source", "", "source system tag (ING, ING_SPAAR, ASN, ASN_SPAAR)")
	cmd.Flags().Bool("override", false, "delete prior imports for the file's accounts first")

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	filePath := args[0]
	source, _ := cmd.Flags().GetString("source")
	override, _ := cmd.Flags().GetBool("override")

	content, err := os.ReadFile(filePath) // #nosec G304 -- user-supplied import file
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	linker := importer.CompositeLinker{
		importer.NewTransferLinker(store, nil),
		importer.NewReferenceLinker(store, nil),
	}
	imp := importer.New(store, bankfile.NewDefaultResolver(), nil, importer.WithLinker(linker))

	result, err := imp.Import(ctx, importer.Request{
		Content:      content,
		FileName:     filepath.Base(filePath),
		SourceSystem: source,
		Override:     override,
	})
	if err != nil {
		return err
	}

	printResult(cmd, result)
	if len(result.Errors) > 0 {
		return fmt.Errorf("import failed")
	}
	return nil
}

func printResult(cmd *cobra.Command, result *model.ImportResult) {
	if result.ImportBatchID != "" {
		cmd.Printf("Batch:      %s\n", result.ImportBatchID)
	}
	cmd.Printf("Total:      %d\n", result.TotalRecords)
	cmd.Printf("Inserted:   %d\n", result.InsertedRecords)
	cmd.Printf("Duplicates: %d\n", result.DuplicateRecords)
	for _, e := range result.Errors {
		cmd.Printf("Error:      %s\n", e)
	}
}
