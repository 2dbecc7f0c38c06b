package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database/users"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// PasswordEnvVar lets scripts pass the password without exposing it in
// the process list.
const PasswordEnvVar = "BOOKSHELF_PASSWORD"

// CreateUserCommand creates an account and optionally issues its first API token.
type CreateUserCommand struct {
	base
	Username   string
	Email      string
	Password   string
	Role       string
	IssueToken bool

	authConfig config.Auth
}

func NewCreateUserCommand(cfg *config.Config) *CreateUserCommand {
	return &CreateUserCommand{base: newBase(cfg), authConfig: cfg.Auth}
}

func (cmd *CreateUserCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)

	fs.StringVar(&cmd.Username, "username", "", "Username (required)")
	fs.StringVar(&cmd.Email, "email", "", "Email address (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password, at least 12 characters (or set "+PasswordEnvVar+")")
	fs.StringVar(&cmd.Role, "role", string(entities.UserRoleMember), "Role: admin or member")
	fs.BoolVar(&cmd.IssueToken, "token", false, "Issue an API token for the new user and print it")
	fs.StringVar(&cmd.DatabasePath, "db", cmd.DatabasePath, "Path to the catalog database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-user -username <name> -email <email> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create a user account.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s=... %s create-user -username admin -email admin@example.com -role admin -token\n", PasswordEnvVar, os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Password == "" {
		cmd.Password = os.Getenv(PasswordEnvVar)
	}

	switch {
	case cmd.Username == "":
		return fmt.Errorf("required flag -username not provided")
	case cmd.Email == "":
		return fmt.Errorf("required flag -email not provided")
	case cmd.Password == "":
		return fmt.Errorf("password not provided: use -password or %s", PasswordEnvVar)
	}
	return nil
}

func (cmd *CreateUserCommand) Run() error {
	db, err := cmd.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()
	service := auth.NewService(users.NewRepository(db.DB), cmd.authConfig)

	user, err := service.CreateUser(ctx, cmd.Username, cmd.Email, cmd.Password, entities.UserRole(cmd.Role))
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	cmd.printf("Created %s %q (id %d)\n", user.Role, user.Username, user.ID)

	if !cmd.IssueToken {
		return nil
	}

	token, err := service.IssueToken(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}
	cmd.printf("API token (shown once): %s\n", token)
	return nil
}
