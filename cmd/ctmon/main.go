// ctmon monitors trading accounts on a cTrader OpenAPI venue and pushes
// position, deal, and connectivity reports to a Telegram chat. One
// connection and one event loop per account; accounts never share state.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/langdon0003/ctrader-monitor/internal/config"
	"github.com/langdon0003/ctrader-monitor/internal/logging"
	"github.com/langdon0003/ctrader-monitor/internal/notify"
	"github.com/langdon0003/ctrader-monitor/internal/observ"
	"github.com/langdon0003/ctrader-monitor/internal/report"
	"github.com/langdon0003/ctrader-monitor/internal/session"
	"github.com/langdon0003/ctrader-monitor/internal/transport"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	var (
		configFile  string
		symbolsFile string
		metricsAddr string
	)

	root := &cobra.Command{
		Use:     "ctmon",
		Short:   "per-account cTrader monitoring and Telegram reporting",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configFile, symbolsFile, metricsAddr)
		},
		SilenceUsage: true,
	}
	root.Flags().StringVar(&configFile, "config", "", "optional config file (env vars take precedence)")
	root.Flags().StringVar(&symbolsFile, "symbols", "", "optional symbol catalog YAML override")
	root.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve /metrics on this address when set")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configFile, symbolsFile, metricsAddr string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if symbolsFile != "" {
		cfg.SymbolsFile = symbolsFile
	}

	log := logging.New(cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	catalog := report.DefaultCatalog()
	if cfg.SymbolsFile != "" {
		catalog, err = report.LoadCatalog(cfg.SymbolsFile)
		if err != nil {
			return fmt.Errorf("load symbol catalog: %w", err)
		}
	}

	log.Info("starting",
		zap.String("host", cfg.HostType),
		zap.Int("accounts", len(cfg.AccountIDs)),
		zap.Int("pnl_interval_hours", cfg.Schedule.PnLIntervalHours),
		zap.String("deals_time", cfg.Schedule.DealsTime),
		zap.String("weekly_time", cfg.Schedule.WeeklyTime),
		zap.Int("reconnect_alert_ceiling", cfg.Reconnect.MaxAttempts))

	dial := transport.WSDialer(transport.WSConfig{URL: transport.HostURL(cfg.HostType)})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if metricsAddr != "" {
		go serveMetrics(metricsAddr, log)
	}

	var wg sync.WaitGroup
	for _, accountID := range cfg.AccountIDs {
		accountID := accountID
		// One sink per session: a report burst on one account must not
		// consume another account's rate-limiter budget.
		sink := notify.NewTelegram(notify.TelegramConfig{
			BotToken: cfg.Telegram.BotToken,
			ChatID:   cfg.Telegram.ChatID,
		})
		s, err := session.New(cfg, accountID, dial, sink, catalog, log)
		if err != nil {
			return fmt.Errorf("account %d: %w", accountID, err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Run(ctx); err != nil {
				log.Error("session exited", zap.Int64("account", accountID), zap.Error(err))
			}
		}()
	}

	wg.Wait()
	log.Info("all sessions stopped")
	return nil
}

func serveMetrics(addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", observ.Handler())
	log.Info("metrics listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("metrics server stopped", zap.Error(err))
	}
}
