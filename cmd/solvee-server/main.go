// Command solvee-server exposes solvee sessions over HTTP.
//
// Usage:
//
//	solvee-server --addr :8080 --config solvee.yaml
//
// Session endpoints:
//
//	POST   /sessions              create a session from an equation
//	GET    /sessions/{id}         snapshot (?format=text for the rendered tree)
//	DELETE /sessions/{id}         discard a session
//	POST   /sessions/{id}/apply   apply one operation to the selected equation
//	POST   /sessions/{id}/select  select an equation and discard its subtree
//	POST   /sessions/{id}/expand  run a strategy from the root
//
// Stateless endpoints: POST /tool, GET /schema, GET /operations,
// GET /strategies and GET /health.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/njchilds90/solvee/collector"
	"github.com/njchilds90/solvee/internal/config"
	"github.com/njchilds90/solvee/internal/logging"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := config.New()
	var configFile string

	cmd := &cobra.Command{
		Use:           "solvee-server",
		Short:         "Serve step-by-step equation solving over HTTP",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, configFile)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			rules, err := loadRules(cfg.Hints)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log, newServer(cfg, log, rules))
		},
	}

	cmd.Flags().StringVar(&configFile, "config", "", "Configuration file path")
	cmd.Flags().String("addr", ":8080", "Address to listen on")
	cmd.Flags().String("hints", "", "YAML file with additional hint rules")
	cmd.Flags().String("log-level", "info", "Logging level (debug, info, warn, error)")
	cmd.Flags().String("log-format", "text", "Log format (text, json)")
	_ = v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = v.BindPFlag("hints", cmd.Flags().Lookup("hints"))
	_ = v.BindPFlag("log.level", cmd.Flags().Lookup("log-level"))
	_ = v.BindPFlag("log.format", cmd.Flags().Lookup("log-format"))
	return cmd
}

func loadRules(path string) ([]collector.Rule, error) {
	rules := collector.DefaultRules()
	if path == "" {
		return rules, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	extra, err := collector.LoadRules(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return append(rules, extra...), nil
}

func serve(ctx context.Context, cfg *config.Config, log *logrus.Logger, s *server) error {
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{
			"addr":         cfg.Server.Addr,
			"max_sessions": cfg.Server.MaxSessions,
			"session_ttl":  cfg.Server.SessionTTL,
		}).Info("solvee server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
