package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"flousi/internal/analytics"
	"flousi/internal/backend"
	"flousi/internal/cli"
	"flousi/internal/config"
	"flousi/internal/i18n"
	"flousi/internal/log"
)

// app holds what every subcommand needs, opened once in PersistentPreRunE.
type app struct {
	user   string
	locale string

	cfg     *config.Config
	logger  *log.Logger
	data    *backend.BackendResult
	service *analytics.Service
}

func (a *app) prefs() i18n.Preferences {
	locale := a.locale
	if locale == "" && a.cfg != nil {
		locale = a.cfg.DefaultLocale
	}
	return i18n.NewPreferences(locale, "")
}

func (a *app) open(cmd *cobra.Command, _ []string) error {
	cli.LoadEnvFile()

	// Logs go to stderr so reports can be piped.
	lc := log.DefaultConfig()
	lc.Component = log.ComponentApp
	lc.Output = os.Stderr
	a.cfg = cli.LoadAndValidateConfig(log.New(lc))
	lc.Level = log.ParseLevel(a.cfg.LogLevel)
	lc.Format = a.cfg.LogFormat
	a.logger = log.New(lc)
	log.SetDefault(a.logger)

	bcfg, err := backend.FromAppConfig(a.cfg)
	if err != nil {
		return fmt.Errorf("invalid backend configuration: %w", err)
	}
	a.data, err = backend.NewFactory(a.logger).CreateBackend(cmd.Context(), bcfg)
	if err != nil {
		return fmt.Errorf("failed to open %s backend: %w", a.cfg.DataBackend, err)
	}
	a.service, _ = cli.NewAnalyticsService(a.cfg, a.data.Backend, a.logger)
	return nil
}

func (a *app) close(_ *cobra.Command, _ []string) error {
	return a.data.Close()
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:                "flousi-report",
		Short:              "Print spending breakdowns from the terminal",
		Long:               `flousi-report reads the configured data backend and prints category breakdowns and income/expense summaries.`,
		SilenceUsage:       true,
		PersistentPreRunE:  a.open,
		PersistentPostRunE: a.close,
	}

	root.PersistentFlags().StringVar(&a.user, "user", "demo", "user whose transactions are reported")
	root.PersistentFlags().StringVar(&a.locale, "locale", "", "output language (fr, en, ar); defaults to DEFAULT_LOCALE")

	root.AddCommand(breakdownCmd(a))
	root.AddCommand(summaryCmd(a))
	root.AddCommand(seedCmd(a))
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
