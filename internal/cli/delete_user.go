package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database/users"
)

// DeleteUserCommand removes an account with its ratings, notes and reading list.
type DeleteUserCommand struct {
	base
	UserID   uint
	Username string
}

func NewDeleteUserCommand(cfg *config.Config) *DeleteUserCommand {
	return &DeleteUserCommand{base: newBase(cfg)}
}

func (cmd *DeleteUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("delete-user", flag.ContinueOnError)

	var id uint64
	fs.Uint64Var(&id, "id", 0, "ID of the user to delete")
	fs.StringVar(&cmd.Username, "username", "", "Username or email of the user to delete")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.DatabasePath, "Path to the catalog database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s delete-user (-id <id> | -username <name>) [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Delete a user. Their ratings are removed from every book average.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.UserID = uint(id)

	if (cmd.UserID == 0) == (cmd.Username == "") {
		return fmt.Errorf("exactly one of -id or -username is required")
	}
	return nil
}

func (cmd *DeleteUserCommand) Run() error {
	db, err := cmd.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	userID := cmd.UserID
	if cmd.Username != "" {
		user, err := users.NewRepository(db.DB).GetUserByUsername(ctx, cmd.Username)
		if err != nil {
			if errors.Is(err, users.ErrUserNotFound) {
				return fmt.Errorf("user %q not found", cmd.Username)
			}
			return err
		}
		userID = user.ID
	}

	removed, err := catalog.NewAccountService(db.DB).DeleteUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", userID, err)
	}

	cmd.printf("Deleted user %d\n", userID)
	cmd.printf("  ratings removed:       %d\n", removed.Ratings)
	cmd.printf("  notes removed:         %d\n", removed.Notes)
	cmd.printf("  reading list entries:  %d\n", removed.Entries)
	return nil
}
