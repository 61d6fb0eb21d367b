package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"flygen/internal/credits"
	"flygen/internal/infra"
	"flygen/internal/profile"
	"flygen/internal/records"
	"flygen/internal/storage"
)

type options struct {
	user   string
	grant  int
	deduct int
	sync   bool
	asJSON bool
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("credits", flag.ContinueOnError)
	fs.StringVar(&opts.user, "user", "", "user ID whose balance to inspect or adjust")
	fs.IntVar(&opts.grant, "grant", 0, "credits to add")
	fs.IntVar(&opts.deduct, "deduct", 0, "credits to remove")
	fs.BoolVar(&opts.sync, "sync", false, "reconcile with the record backend before printing")
	fs.BoolVar(&opts.asJSON, "json", false, "print the profile as JSON")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	opts.user = strings.TrimSpace(opts.user)
	if opts.user == "" {
		return opts, errors.New("-user is required")
	}
	if opts.grant < 0 || opts.deduct < 0 {
		return opts, errors.New("-grant and -deduct must not be negative")
	}
	if opts.grant > 0 && opts.deduct > 0 {
		return opts, errors.New("use either -grant or -deduct")
	}
	return opts, nil
}

func main() {
	_ = godotenv.Load()

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		exitWithError(err)
	}
	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "credits").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		exitWithError(err)
	}
	var sql infra.SQLExecutor
	if pool != nil {
		defer pool.Close()
		sql = infra.NewSQLRunner(pool, logger)
	}
	backend, err := records.Open(cfg, sql)
	if err != nil {
		exitWithError(err)
	}
	files, err := storage.NewFileStore(cfg.StoragePath)
	if err != nil {
		exitWithError(err)
	}

	ledgers := credits.NewRegistry(profile.NewFileStore(files, cfg.StarterCredits), backend, logger, nil)
	err = execute(ctx, ledgers.For(opts.user), opts, os.Stdout)
	ledgers.Wait()
	if err != nil {
		exitWithError(err)
	}
}

// execute applies the requested adjustment and prints the resulting state.
func execute(ctx context.Context, ledger *credits.Ledger, opts options, out io.Writer) error {
	var (
		bal credits.Balance
		err error
	)
	switch {
	case opts.sync:
		bal, err = ledger.Sync(ctx)
	default:
		bal, err = ledger.Balance(ctx)
	}
	if err != nil {
		return err
	}
	switch {
	case opts.grant > 0:
		bal, err = ledger.Grant(ctx, opts.grant)
	case opts.deduct > 0:
		bal, err = ledger.Deduct(ctx, opts.deduct)
	}
	if err != nil {
		return err
	}

	p, err := ledger.Profile(ctx)
	if err != nil {
		return err
	}
	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	}
	fmt.Fprintf(out, "user:     %s\n", ledger.UserID())
	fmt.Fprintf(out, "credits:  %d\n", bal.Credits)
	if bal.Outcome != "" {
		fmt.Fprintf(out, "outcome:  %s\n", bal.Outcome)
	}
	if p.SubscriptionProduct != "" {
		fmt.Fprintf(out, "plan:     %s\n", p.SubscriptionProduct)
	}
	return nil
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "credits: %v\n", err)
	os.Exit(1)
}
