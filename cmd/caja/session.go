package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"caja/internal/config"
	"caja/internal/core"
	"caja/internal/ledger"
	applog "caja/internal/log"
	"caja/internal/services"
	"caja/internal/snapshot"
	"caja/internal/worker"
)

// runSession drives the interactive register shell. The flush worker
// mirrors the session to the store in the background; the REPL itself only
// calls into the register service.
func runSession(ctx context.Context, logger *applog.Logger, cfg *config.Config, repo *ledger.Repository) error {
	register := services.NewRegister(ctx, repo, logger.Logger)

	flusher := worker.NewFlusher(register.Flush, cfg.FlushInterval, logger.Logger)

	sessionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(sessionCtx)
	g.Go(func() error {
		return flusher.Run(gctx)
	})
	g.Go(func() error {
		defer cancel()
		repl(gctx, register, repo, cfg)
		return nil
	})
	return g.Wait()
}

func repl(ctx context.Context, register *services.Register, repo *ledger.Repository, cfg *config.Config) {
	if !repo.Available() {
		fmt.Println("warning: storage unavailable, data will not survive this session")
	}
	fmt.Println(`register session ready, type "help" for commands`)

	// Lines arrive over a channel so an interrupt ends the session even
	// while the reader is blocked on stdin.
	lines := readLines(os.Stdin)
	for {
		fmt.Print("> ")
		line, ok := nextLine(ctx, lines)
		if !ok {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "exit", "quit":
			return
		case "help":
			printHelp()
		case "shift":
			cmdShift(register, args)
		case "employee":
			cmdEmployee(register, args)
		case "sale":
			cmdSale(register, args, core.MethodCash)
		case "transfer":
			cmdSale(register, args, core.MethodTransfer)
		case "rm":
			cmdRemoveSale(register, args)
		case "sales":
			cmdSales(register)
		case "save":
			cmdSave(ctx, register)
		case "closes":
			cmdCloses(register)
		case "staff":
			cmdStaff(ctx, register, args)
		case "weekly":
			wr := register.GenerateWeeklyReport(ctx)
			fmt.Printf("week %s: total %d over %d days\n", wr.Week, wr.WeekTotal, wr.DaysWorked)
		case "export":
			cmdExport(ctx, repo, cfg, args)
		case "import":
			cmdImport(ctx, register, repo, args)
		case "clear":
			cmdClear(ctx, register, lines)
		default:
			fmt.Printf("unknown command %q, type \"help\"\n", cmd)
		}
	}
}

// readLines feeds stdin lines into a channel, closed on EOF. The reader
// goroutine leaks on interrupt; the process is exiting anyway.
func readLines(r io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()
	return lines
}

// nextLine returns the next input line, or false on EOF or cancellation.
func nextLine(ctx context.Context, lines <-chan string) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-lines:
		return line, ok
	}
}

func printHelp() {
	fmt.Print(`  shift 8-15|15-22        select the shift
  employee <name>         set the employee on duty
  sale <amount>           record a cash sale
  transfer <amount> <payer>  record a transfer sale
  rm <id>                 remove an unsaved sale
  sales                   list unsaved sales and running totals
  save                    save the shift report (afternoon prints the close)
  closes                  list derived daily closes
  staff [add <name>|toggle <id>|rm <id>]
  weekly                  generate this week's report
  export [path]           write a snapshot backup
  import <path>           restore collections from a snapshot
  clear                   delete ALL data (asks for confirmation)
  exit
`)
}

func cmdShift(register *services.Register, args []string) {
	if len(args) == 0 {
		fmt.Println("usage: shift 8-15|15-22")
		return
	}
	if err := register.SelectShift(core.ShiftCode(args[0])); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("shift %s selected\n", args[0])
}

func cmdEmployee(register *services.Register, args []string) {
	if len(args) == 0 {
		fmt.Println("usage: employee <name>")
		return
	}
	register.SetEmployee(strings.Join(args, " "))
	fmt.Printf("employee set to %q\n", register.Employee())
}

func cmdSale(register *services.Register, args []string, method core.PaymentMethod) {
	if len(args) == 0 {
		fmt.Println("usage: sale <amount> | transfer <amount> <payer>")
		return
	}
	amount, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Println("error:", core.ErrInvalidAmount)
		return
	}
	payer := strings.Join(args[1:], " ")
	sale, err := register.AddSale(amount, method, payer)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("sale %d recorded: %d (%s)\n", sale.ID, sale.Amount, sale.Method)
}

func cmdRemoveSale(register *services.Register, args []string) {
	if len(args) == 0 {
		fmt.Println("usage: rm <id>")
		return
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || !register.RemoveSale(id) {
		fmt.Println("no such sale")
		return
	}
	fmt.Println("sale removed")
}

func cmdSales(register *services.Register) {
	for _, s := range register.Sales() {
		if s.Method == core.MethodTransfer {
			fmt.Printf("  %d  %s  %6d  transfer from %s\n", s.ID, s.Time, s.Amount, s.Payer)
		} else {
			fmt.Printf("  %d  %s  %6d  cash\n", s.ID, s.Time, s.Amount)
		}
	}
	cash, transfer, grand := register.Totals()
	fmt.Printf("cash %d + transfer %d + float %d = %d\n", cash, transfer, core.OpeningFloat, grand)
}

func cmdSave(ctx context.Context, register *services.Register) {
	report, dayClose, err := register.SaveShiftReport(ctx)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Printf("report %s saved: total %d\n", report.Key, report.Total)
	if dayClose != nil {
		fmt.Printf("daily close %s: total %d", dayClose.Date, dayClose.DayTotal)
		if dayClose.Morning == nil {
			fmt.Print(" (no morning shift)")
		}
		fmt.Println()
	}
}

func cmdCloses(register *services.Register) {
	for _, dc := range register.DailyCloses() {
		fmt.Printf("  %s  total %d\n", dc.Date, dc.DayTotal)
	}
}

func cmdStaff(ctx context.Context, register *services.Register, args []string) {
	if len(args) == 0 {
		for _, p := range register.Personnel() {
			state := "inactive"
			if p.Active {
				state = "active"
			}
			fmt.Printf("  %d  %s  (%s)\n", p.ID, p.Name, state)
		}
		return
	}
	switch args[0] {
	case "add":
		p, err := register.AddPersonnel(ctx, strings.Join(args[1:], " "))
		if err != nil {
			fmt.Println("error:", err)
			return
		}
		fmt.Printf("added %s (%d)\n", p.Name, p.ID)
	case "toggle", "rm":
		if len(args) < 2 {
			fmt.Println("usage: staff toggle|rm <id>")
			return
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			fmt.Println("no such entry")
			return
		}
		ok := false
		if args[0] == "toggle" {
			ok = register.TogglePersonnel(ctx, id)
		} else {
			ok = register.RemovePersonnel(ctx, id)
		}
		if !ok {
			fmt.Println("no such entry")
		}
	default:
		fmt.Println("usage: staff [add <name>|toggle <id>|rm <id>]")
	}
}

func cmdExport(ctx context.Context, repo *ledger.Repository, cfg *config.Config, args []string) {
	now := time.Now()
	doc := snapshot.Export(ctx, repo, now)
	data, err := snapshot.Marshal(doc)
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	path := filepath.Join(cfg.ExportDir, snapshot.Filename(now))
	if len(args) > 0 {
		path = args[0]
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("snapshot written to", path)
}

func cmdImport(ctx context.Context, register *services.Register, repo *ledger.Repository, args []string) {
	if len(args) == 0 {
		fmt.Println("usage: import <path>")
		return
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	if _, err := snapshot.Import(ctx, repo, data); err != nil {
		fmt.Println("error:", err)
		return
	}
	register.ReplaceCollections(repo.ShiftReports(ctx), repo.Personnel(ctx), repo.WeeklyReports(ctx))
	fmt.Printf("restored %d reports, %d staff, %d weekly reports\n",
		len(register.Reports()), len(register.Personnel()), len(register.WeeklyReports()))
}

// clear-all is destructive and asks the operator to type it out.
func cmdClear(ctx context.Context, register *services.Register, lines <-chan string) {
	fmt.Print("this deletes ALL saved data, type \"yes\" to confirm: ")
	answer, ok := nextLine(ctx, lines)
	if !ok || strings.TrimSpace(answer) != "yes" {
		fmt.Println("aborted")
		return
	}
	if err := register.ClearAll(ctx); err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println("all data cleared")
}
