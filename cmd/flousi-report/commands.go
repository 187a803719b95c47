package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"flousi/internal/core"
	"flousi/internal/log"
	"flousi/internal/sheets/memory"
)

func breakdownCmd(a *app) *cobra.Command {
	var (
		period   string
		mode     string
		selected int
	)
	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Show per-category totals for one period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := core.ParsePeriod(period)
			if err != nil {
				return err
			}
			k, err := core.ParseKind(mode)
			if err != nil {
				return err
			}
			q := core.Query{UserID: a.user, Period: p, Kind: k}
			if err := q.Validate(); err != nil {
				return err
			}

			var tap *int
			if cmd.Flags().Changed("selected") {
				tap = &selected
			}
			report, err := a.service.Report(cmd.Context(), q, tap)
			if err != nil {
				return fmt.Errorf("failed to build report: %w", err)
			}
			return renderBreakdown(cmd.OutOrStdout(), report, a.prefs())
		},
	}
	cmd.Flags().StringVar(&period, "period", "month", "week, month or year")
	cmd.Flags().StringVar(&mode, "mode", "expense", "expense or income")
	cmd.Flags().IntVar(&selected, "selected", 0, "highlight the category at this index instead of the largest")
	return cmd
}

func summaryCmd(a *app) *cobra.Command {
	var period string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Compare income and expenses for one period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := core.ParsePeriod(period)
			if err != nil {
				return err
			}
			if a.user == "" {
				return core.ErrEmptyUserID
			}
			sum, err := a.service.Summary(cmd.Context(), a.user, p)
			if err != nil {
				return fmt.Errorf("failed to build summary: %w", err)
			}
			return renderSummary(cmd.OutOrStdout(), sum, a.prefs())
		},
	}
	cmd.Flags().StringVar(&period, "period", "month", "week, month or year")
	return cmd
}

func seedCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load sample transactions into an offline backend",
		Long: `Load transactions from a CSV file of "user,kind,category,amount,date" lines,
or generate demo transactions for --user when no file is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.data.Seeder == nil {
				return fmt.Errorf("backend %q does not accept seed data", a.cfg.DataBackend)
			}

			txs, err := loadSeed(file, a.user, time.Now())
			if err != nil {
				return err
			}
			if err := a.data.Seeder.InsertTransactions(cmd.Context(), txs...); err != nil {
				return fmt.Errorf("failed to insert transactions: %w", err)
			}
			a.logger.Info("Seeded transactions", "count", len(txs), "backend", a.cfg.DataBackend, log.FieldUserID, a.user)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d\n", infoStyle.Render("seeded"), len(txs))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "CSV file to import")
	return cmd
}

func loadSeed(file, user string, now time.Time) ([]core.Transaction, error) {
	if file == "" {
		return memory.DemoTransactions(user, now), nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()
	txs, err := memory.ReadTransactionsCSV(f)
	if err != nil {
		return nil, err
	}
	if len(txs) == 0 {
		return nil, fmt.Errorf("no valid transactions in %s", file)
	}
	return txs, nil
}
