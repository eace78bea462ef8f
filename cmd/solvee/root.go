package main

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/njchilds90/solvee/collector"
	"github.com/njchilds90/solvee/internal/config"
	"github.com/njchilds90/solvee/internal/logging"
)

// app is the state shared by the subcommands once the configuration is
// loaded.
type app struct {
	v          *viper.Viper
	configFile string
	cfg        *config.Config
	log        *logrus.Logger
}

// configFlags are subcommand flags that override configuration keys of the
// same name.
var configFlags = []string{"strategy", "pace", "format", "hints", "operations"}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	rootCmd := &cobra.Command{
		Use:   "solvee",
		Short: "Solve equations step by step",
		Long: `solvee transforms an equation one operation at a time and records every
step in a derivation tree. Strategies expand the tree automatically; the
apply command replays a sequence of operations by hand.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range configFlags {
				if f := cmd.Flags().Lookup(name); f != nil {
					if err := a.v.BindPFlag(name, f); err != nil {
						return err
					}
				}
			}
			return a.load(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", "Configuration file path")
	rootCmd.PersistentFlags().String("log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
	_ = a.v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))

	rootCmd.AddCommand(
		newSolveCmd(a),
		newApplyCmd(a),
		newOperationsCmd(a),
		newStrategiesCmd(a),
	)
	return rootCmd
}

func (a *app) load(logOut io.Writer) error {
	cfg, err := config.Load(a.v, a.configFile)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log, logOut)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	log.WithFields(logrus.Fields{"config": a.v.ConfigFileUsed(), "strategy": cfg.Strategy}).Debug("configuration loaded")
	return nil
}

// rules returns the built-in hint rules plus those of the configured file.
func (a *app) rules() ([]collector.Rule, error) {
	rules := collector.DefaultRules()
	if a.cfg.Hints == "" {
		return rules, nil
	}
	f, err := os.Open(a.cfg.Hints)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	extra, err := collector.LoadRules(f)
	if err != nil {
		return nil, err
	}
	a.log.WithFields(logrus.Fields{"file": a.cfg.Hints, "rules": len(extra)}).Debug("hint rules loaded")
	return append(rules, extra...), nil
}
