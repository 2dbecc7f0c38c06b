package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
)

// Command is implemented by every subcommand.
type Command interface {
	ParseFlags(args []string) error
	Run() error
}

// base carries what every command shares: where to print and which
// database to open.
type base struct {
	DatabasePath string
	LogLevel     string
	Out          io.Writer
}

func newBase(cfg *config.Config) base {
	return base{
		DatabasePath: cfg.Database.Path,
		LogLevel:     "silent",
		Out:          os.Stdout,
	}
}

func (b *base) printf(format string, args ...any) {
	fmt.Fprintf(b.Out, format, args...)
}

func (b *base) openDatabase() (*database.Database, error) {
	absDBPath, err := filepath.Abs(b.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for database: %w", err)
	}

	db, err := database.NewDatabase(absDBPath, database.Options{LogLevel: b.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return db, nil
}
