// Command scholarhub-admin runs operator tasks against the scholarhub
// database: creating admin accounts, reconciling or auditing scholar
// statuses, and printing the dashboard.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"scholarhub/internal/auth"
	"scholarhub/internal/cli"
	"scholarhub/internal/core"
	"scholarhub/internal/log"
	"scholarhub/internal/services"
	"scholarhub/internal/storage"
)

const usage = `usage: scholarhub-admin <command> [flags]

commands:
  create-admin -username NAME -email EMAIL -password SECRET
  reconcile
  audit
  report
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentAdmin)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()
	cat := cli.LoadCatalog(logger, cfg)

	ctx := context.Background()
	var err error
	switch os.Args[1] {
	case "create-admin":
		err = createAdmin(ctx, repo, auth.NewHasher(cfg.BcryptCost), cfg.MinPasswordLength, os.Args[2:])
	case "reconcile":
		reports := services.NewReportService(repo, cat, nil)
		var promoted int64
		promoted, err = reports.Reconcile(ctx)
		if err == nil {
			fmt.Printf("reconciled: %d scholars\n", promoted)
			err = audit(ctx, reports)
		}
	case "audit":
		err = audit(ctx, services.NewReportService(repo, cat, nil))
	case "report":
		var dash core.Dashboard
		dash, err = services.NewReportService(repo, cat, nil).Dashboard(ctx)
		if err == nil {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			err = enc.Encode(dash)
		}
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		logger.Error("Command failed", "command", os.Args[1], "error", err)
		os.Exit(1)
	}
}

// audit prints every student whose stored status disagrees with their
// applications and fails when there is at least one.
func audit(ctx context.Context, reports *services.ReportService) error {
	mismatches, err := reports.Audit(ctx)
	if err != nil {
		return err
	}
	for _, m := range mismatches {
		fmt.Printf("mismatch: %s stored=%s expected=%s\n", m.Username, m.Stored, m.Expected)
	}
	if len(mismatches) > 0 {
		return fmt.Errorf("%d students need reconciling", len(mismatches))
	}
	fmt.Println("audit: all scholar statuses consistent")
	return nil
}

// createAdmin skips the signup email-domain rule; operators may use any address.
func createAdmin(ctx context.Context, repo *storage.SQLiteRepository, hasher *auth.Hasher, minPassword int, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	username := fs.String("username", "", "admin username")
	email := fs.String("email", "", "admin email")
	password := fs.String("password", "", "admin password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := core.Signup{
		Type:     core.Admin,
		Username: strings.TrimSpace(*username),
		Email:    strings.ToLower(strings.TrimSpace(*email)),
		Password: *password,
	}
	if err := req.Validate(core.SignupPolicy{MinPasswordLength: minPassword}); err != nil {
		return err
	}
	hash, err := hasher.Hash(req.Password)
	if err != nil {
		return err
	}
	acct, err := repo.CreateAccount(ctx, req.Type, req.Username, req.Email, hash)
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	fmt.Printf("created admin %s <%s>\n", acct.Username, acct.Email)
	return nil
}
