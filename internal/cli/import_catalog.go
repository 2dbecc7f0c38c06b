package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/importers"
)

// ImportCatalogCommand loads books from a JSON catalog file.
type ImportCatalogCommand struct {
	base
	FilePath string
	DryRun   bool
	Verbose  bool
}

func NewImportCatalogCommand(cfg *config.Config) *ImportCatalogCommand {
	return &ImportCatalogCommand{base: newBase(cfg)}
}

func (cmd *ImportCatalogCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("import-catalog", flag.ContinueOnError)

	fs.StringVar(&cmd.FilePath, "file", "", "Path to the JSON catalog file (required)")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.DatabasePath, "Path to the catalog database")
	fs.BoolVar(&cmd.DryRun, "dry-run", false, "Validate and report without writing")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "List every rejected record")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s import-catalog -file <path> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import books from a JSON array. Books whose ISBN is already in the\n")
		fmt.Fprintf(os.Stderr, "catalog are skipped.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s import-catalog -file books.json -dry-run -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.FilePath == "" {
		return fmt.Errorf("required flag -file not provided")
	}
	return nil
}

func (cmd *ImportCatalogCommand) Run() error {
	file, err := os.Open(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open catalog file: %w", err)
	}
	defer file.Close()

	records, err := importers.ReadCatalog(file)
	if err != nil {
		return err
	}
	cmd.printf("Found %d records in %s\n", len(records), cmd.FilePath)
	if cmd.DryRun {
		cmd.printf("DRY RUN MODE - No changes will be made\n")
	}

	db, err := cmd.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	importer := importers.NewCatalogImporter(books.NewRepository(db.DB), nil)
	result, err := importer.Import(context.Background(), records, cmd.DryRun)
	if err != nil {
		return err
	}

	cmd.printf("\n=== Import Summary ===\n")
	cmd.printf("Created: %d\n", result.Created)
	cmd.printf("Skipped: %d\n", result.Skipped)
	cmd.printf("Failed:  %d\n", result.Failed)

	if cmd.Verbose {
		for _, recErr := range result.Errors {
			cmd.printf("  [ERROR] %s\n", recErr)
		}
	}
	return nil
}
