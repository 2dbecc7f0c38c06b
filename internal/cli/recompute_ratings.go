package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database/books"
)

// RecomputeRatingsCommand rebuilds rating aggregates from the ratings table.
// Use it after seeding ratings directly or to repair drift.
type RecomputeRatingsCommand struct {
	base
	BookID uint
}

func NewRecomputeRatingsCommand(cfg *config.Config) *RecomputeRatingsCommand {
	return &RecomputeRatingsCommand{base: newBase(cfg)}
}

func (cmd *RecomputeRatingsCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("recompute-ratings", flag.ContinueOnError)

	var id uint64
	fs.Uint64Var(&id, "book", 0, "Only recompute this book ID (default: all books)")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.DatabasePath, "Path to the catalog database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s recompute-ratings [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Recompute average ratings with a full scan of the ratings table.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.BookID = uint(id)
	return nil
}

func (cmd *RecomputeRatingsCommand) Run() error {
	db, err := cmd.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	service := catalog.NewRatingService(db.DB, books.NewRepository(db.DB))

	if cmd.BookID != 0 {
		book, err := service.Recompute(ctx, cmd.BookID)
		if err != nil {
			return fmt.Errorf("failed to recompute book %d: %w", cmd.BookID, err)
		}
		cmd.printf("Book %d %q: average %.1f from %d ratings\n", book.ID, book.Title, book.AverageRating, book.TotalRatings)
		return nil
	}

	count, err := service.RecomputeAll(ctx)
	if err != nil {
		return fmt.Errorf("recomputed %d books before failing: %w", count, err)
	}
	cmd.printf("Recomputed ratings for %d books\n", count)
	return nil
}
