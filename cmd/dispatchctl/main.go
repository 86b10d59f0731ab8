// Package main provides dispatchctl, the administrative command line tool.
// Usage: dispatchctl <migrate|create-user|seed> [flags]
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"dispatch/internal/config"
	"dispatch/internal/handler/http/respond"
	"dispatch/internal/infra/adapter/persistence/sqlstore"
	"dispatch/internal/infra/db"
	"dispatch/internal/observability/logging"
	authservice "dispatch/internal/service/auth"
	userUC "dispatch/internal/usecase/user"
)

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: dispatchctl <command> [flags]")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  migrate       apply pending database migrations")
	fmt.Fprintln(os.Stderr, "  create-user   create an account (use -admin for a superuser)")
	fmt.Fprintln(os.Stderr, "  seed          load sample publishers, users and articles")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Examples:")
	fmt.Fprintln(os.Stderr, "  dispatchctl migrate")
	fmt.Fprintln(os.Stderr, "  dispatchctl create-user -username ed -email ed@example.com -role editor -admin")
	fmt.Fprintln(os.Stderr, "  dispatchctl seed -password 'long enough secret'")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "migrate":
		err = runMigrate(ctx, os.Args[2:])
	case "create-user":
		err = runCreateUser(ctx, os.Args[2:])
	case "seed":
		err = runSeed(ctx, logger, os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", respond.SanitizeError(err))
		os.Exit(1)
	}
}

// openDatabase opens DATABASE_URL (or -database) and applies migrations.
func openDatabase(ctx context.Context, rawURL string) (*sql.DB, db.Dialect, error) {
	if rawURL == "" {
		rawURL = os.Getenv("DATABASE_URL")
	}
	database, dialect, err := db.Open(ctx, rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("open database: %w", err)
	}
	if err := db.MigrateUp(ctx, database, dialect); err != nil {
		_ = database.Close()
		return nil, "", fmt.Errorf("migrate: %w", err)
	}
	return database, dialect, nil
}

func runMigrate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	dsn := fs.String("database", "", "database URL (default $DATABASE_URL)")
	_ = fs.Parse(args)

	database, dialect, err := openDatabase(ctx, *dsn)
	if err != nil {
		return err
	}
	defer database.Close()
	fmt.Printf("migrations applied (%s)\n", dialect)
	return nil
}

func credentialRequirements() (authservice.CredentialRequirements, error) {
	secCfg, err := config.LoadSecurityConfigOrDefault(os.Getenv("SECURITY_CONFIG"))
	if err != nil {
		return authservice.CredentialRequirements{}, err
	}
	return authservice.CredentialRequirements{
		MinPasswordLength: secCfg.GetMinPasswordLength(),
		WeakPasswords:     secCfg.GetWeakPasswords(),
	}, nil
}

func runCreateUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ExitOnError)
	var (
		dsn      = fs.String("database", "", "database URL (default $DATABASE_URL)")
		username = fs.String("username", "", "login name (required)")
		email    = fs.String("email", "", "email address (required)")
		first    = fs.String("first-name", "", "first name")
		last     = fs.String("last-name", "", "last name")
		role     = fs.String("role", "reader", "reader, journalist or editor")
		password = fs.String("password", "", "password (default $DISPATCH_PASSWORD)")
		admin    = fs.Bool("admin", false, "grant publisher management")
	)
	_ = fs.Parse(args)

	if *password == "" {
		*password = os.Getenv("DISPATCH_PASSWORD")
	}
	if *username == "" || *email == "" || *password == "" {
		fs.Usage()
		return fmt.Errorf("username, email and password are required")
	}

	req, err := credentialRequirements()
	if err != nil {
		return err
	}
	database, dialect, err := openDatabase(ctx, *dsn)
	if err != nil {
		return err
	}
	defer database.Close()

	svc := &userUC.Service{Store: sqlstore.New(database, dialect), Policy: req}
	u, err := svc.Register(ctx, userUC.RegisterInput{
		Username:        *username,
		Email:           *email,
		FirstName:       *first,
		LastName:        *last,
		Role:            *role,
		Password:        *password,
		PasswordConfirm: *password,
		IsAdmin:         *admin,
	})
	if err != nil {
		return err
	}
	fmt.Printf("created %s %q (id %d, admin=%t)\n", u.Role, u.Username, u.ID, u.IsAdmin)
	return nil
}

func runSeed(ctx context.Context, logger *slog.Logger, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	dsn := fs.String("database", "", "database URL (default $DATABASE_URL)")
	password := fs.String("password", "", "password for every sample account (default $DISPATCH_PASSWORD)")
	_ = fs.Parse(args)

	if *password == "" {
		*password = os.Getenv("DISPATCH_PASSWORD")
	}
	if *password == "" {
		return fmt.Errorf("a password for the sample accounts is required")
	}

	req, err := credentialRequirements()
	if err != nil {
		return err
	}
	database, dialect, err := openDatabase(ctx, *dsn)
	if err != nil {
		return err
	}
	defer database.Close()

	res, err := Seed(ctx, sqlstore.New(database, dialect), req, *password)
	if err != nil {
		return err
	}
	if res.Skipped {
		logger.Info("sample data already present, nothing to do")
		return nil
	}
	logger.Info("sample data loaded",
		slog.Int("users", res.Users),
		slog.Int("publishers", res.Publishers),
		slog.Int("articles", res.Articles),
		slog.Int("approved", res.Approved))
	return nil
}
