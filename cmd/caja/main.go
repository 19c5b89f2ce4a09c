package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"caja/internal/cli"
	"caja/internal/config"
	"caja/internal/ledger"
	applog "caja/internal/log"
	"caja/internal/services"
	"caja/internal/snapshot"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	command := "session"
	args := os.Args[1:]
	if len(args) > 0 {
		command = args[0]
		args = args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, cleanup := cli.OpenStore(ctx, logger, cfg)
	defer cleanup()
	repo := ledger.NewRepository(st)

	var err error
	switch command {
	case "session":
		err = runSession(ctx, logger, cfg, repo)
	case "export":
		err = runExport(ctx, logger, cfg, repo, args)
	case "import":
		err = runImport(ctx, logger, repo, args)
	case "weekly":
		err = runWeekly(ctx, logger, repo)
	case "verify":
		err = runVerify(ctx, repo)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", command)
		usage()
		os.Exit(2)
	}
	if err != nil {
		logger.Error("Command failed",
			applog.FieldOperation, command, applog.FieldError, err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: caja [command]

commands:
  session   interactive register session (default)
  export    write a snapshot backup [path]
  import    replace collections from a snapshot <path>
  weekly    generate and persist this week's report
  verify    print collection counts and last backup time
`)
}

func runExport(ctx context.Context, logger *applog.Logger, cfg *config.Config, repo *ledger.Repository, args []string) error {
	now := time.Now()
	doc := snapshot.Export(ctx, repo, now)
	data, err := snapshot.Marshal(doc)
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.ExportDir, snapshot.Filename(now))
	if len(args) > 0 {
		path = args[0]
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	logger.Info("Snapshot exported",
		applog.FieldPath, path,
		"shift_reports", len(doc.DailyReports),
		"personnel", len(doc.Personnel),
		"weekly_reports", len(doc.WeeklyReports))
	fmt.Println(path)
	return nil
}

func runImport(ctx context.Context, logger *applog.Logger, repo *ledger.Repository, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("import requires a snapshot path")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read snapshot: %w", err)
	}

	doc, err := snapshot.Import(ctx, repo, data)
	if err != nil {
		return err
	}

	logger.Info("Snapshot imported",
		applog.FieldPath, args[0],
		"shift_reports", len(doc.DailyReports),
		"personnel", len(doc.Personnel),
		"weekly_reports", len(doc.WeeklyReports))
	return nil
}

func runWeekly(ctx context.Context, logger *applog.Logger, repo *ledger.Repository) error {
	register := services.NewRegister(ctx, repo, logger.Logger)
	wr := register.GenerateWeeklyReport(ctx)

	fmt.Printf("week:       %s\n", wr.Week)
	fmt.Printf("total:      %d\n", wr.WeekTotal)
	fmt.Printf("morning:    %d\n", wr.MorningTotal)
	fmt.Printf("afternoon:  %d\n", wr.AfternoonTotal)
	fmt.Printf("days:       %d\n", wr.DaysWorked)
	return nil
}

func runVerify(ctx context.Context, repo *ledger.Repository) error {
	fmt.Printf("persistent:     %v\n", repo.Available())
	fmt.Printf("shift reports:  %d\n", len(repo.ShiftReports(ctx)))
	fmt.Printf("personnel:      %d\n", len(repo.Personnel(ctx)))
	fmt.Printf("weekly reports: %d\n", len(repo.WeeklyReports(ctx)))
	if at, ok := repo.LastBackup(ctx); ok {
		fmt.Printf("last backup:    %s\n", at.Format(time.RFC3339))
	} else {
		fmt.Println("last backup:    never")
	}
	return nil
}
