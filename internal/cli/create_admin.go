package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/jobdesk/jobdesk/internal/auth"
	"github.com/jobdesk/jobdesk/internal/config"
	"github.com/jobdesk/jobdesk/internal/database"
	usersrepo "github.com/jobdesk/jobdesk/internal/database/users"
	"github.com/jobdesk/jobdesk/internal/entities"
)

// CreateAdminCommand creates an administrator account, or promotes an
// existing account to administrator.
type CreateAdminCommand struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	DatabasePath string
	SecretKey    string
}

func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.Email, "email", "", "Email address of the administrator (required)")
	fs.StringVar(&cmd.Password, "password", "", "Password for a newly created account")
	fs.StringVar(&cmd.FirstName, "first-name", "Admin", "First name for a newly created account")
	fs.StringVar(&cmd.LastName, "last-name", "User", "Last name for a newly created account")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the database file")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin -email <address> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an administrator account, or promote an existing account.\n\n")
		fmt.Fprintf(os.Stderr, "If the email belongs to an existing account it is promoted to\n")
		fmt.Fprintf(os.Stderr, "administrator and -password is ignored. Otherwise a new account is\n")
		fmt.Fprintf(os.Stderr, "created and -password is required.\n\n")
		fmt.Fprintf(os.Stderr, "AUTH_SECRET_KEY must be set in the environment.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s create-admin -email admin@example.com -password s3cret\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s create-admin -email existing@example.com\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Email == "" {
		return fmt.Errorf("required flag -email not provided")
	}

	cmd.SecretKey = os.Getenv("AUTH_SECRET_KEY")
	if cmd.SecretKey == "" {
		return fmt.Errorf("AUTH_SECRET_KEY is not set")
	}

	return nil
}

func (cmd *CreateAdminCommand) Run() error {
	db, err := database.NewDatabase(cmd.DatabasePath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	repo := usersrepo.NewRepository(db.DB)

	hasher, err := auth.NewHasher(cmd.SecretKey)
	if err != nil {
		return err
	}
	service := auth.NewService(repo, hasher)

	existing, err := repo.GetByEmail(cmd.Email)
	if err != nil {
		return fmt.Errorf("look up account: %w", err)
	}

	if existing != nil {
		if existing.Role == entities.UserRoleAdmin {
			fmt.Printf("%s is already an administrator\n", cmd.Email)
			return nil
		}
		if err := repo.Update(existing.ID, map[string]any{"role": entities.UserRoleAdmin}); err != nil {
			return fmt.Errorf("promote account: %w", err)
		}
		fmt.Printf("Promoted %s to administrator\n", cmd.Email)
		return nil
	}

	if cmd.Password == "" {
		return fmt.Errorf("account does not exist; -password is required to create it")
	}

	user, err := service.Register(cmd.Email, cmd.Password, cmd.FirstName, cmd.LastName)
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}

	if err := repo.Update(user.ID, map[string]any{"role": entities.UserRoleAdmin}); err != nil {
		return fmt.Errorf("assign administrator role: %w", err)
	}

	fmt.Printf("Created administrator account %s (id %d)\n", user.Email, user.ID)
	return nil
}
