package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codewithboateng/doclint/internal/config"
	"github.com/codewithboateng/doclint/internal/reporting"
	"github.com/codewithboateng/doclint/internal/rulesdsl"
	"github.com/codewithboateng/doclint/internal/shared"
	"github.com/codewithboateng/doclint/internal/storage"
)

var version = "dev"

// app carries what every subcommand needs once flags are parsed.
type app struct {
	settingsPath string
	rulesPath    string
	debug        bool

	cfg    shared.Config
	logger *zap.SugaredLogger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "doclint",
		Short:         "doclint - documentation lint for source trees",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.settingsPath, "settings", "doclint.yaml", "application settings file")
	root.PersistentFlags().StringVarP(&a.rulesPath, "config", "c", ".doclint.yml", "rule configuration file")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "debug logging")

	root.AddCommand(
		newLintCmd(a),
		newRulesCmd(a),
		newHistoryCmd(a),
		newDiffCmd(a),
		newServeCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print the version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(cmd.OutOrStdout(), "doclint", version)
			},
		},
	)
	return root
}

func (a *app) init() error {
	cfg, err := shared.LoadConfig(a.settingsPath)
	if err != nil {
		return err
	}
	if a.debug {
		cfg.Logging.Level = "debug"
	}
	logger, err := shared.InitLogger(cfg.Logging.Format, cfg.Logging.Level)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	reporting.ToolVersion = version

	for _, p := range cfg.RulePacks {
		n, err := rulesdsl.LoadAndRegister(p)
		if err != nil {
			return fmt.Errorf("rule pack %s: %w", p, err)
		}
		logger.Debugw("rule pack loaded", "path", p, "rules", n)
	}
	return nil
}

// resolver loads the rule configuration. Configuration errors are logged with
// the offending rule and end the command with status 2.
func (a *app) resolver() (*config.Resolver, error) {
	doc, err := config.Load(a.rulesPath)
	if err != nil {
		a.logger.Errorw("invalid configuration", "path", a.rulesPath, "error", err)
		return nil, exitCode(2)
	}
	res, err := config.NewResolver(doc, nil)
	if err != nil {
		var ce *config.Error
		if errors.As(err, &ce) {
			a.logger.Errorw("invalid configuration", "rule", ce.RuleID, "error", ce.Msg)
		} else {
			a.logger.Errorw("invalid configuration", "error", err)
		}
		return nil, exitCode(2)
	}
	return res, nil
}

func (a *app) openStore() (*storage.DB, error) {
	db, err := storage.Open(a.cfg.Database.Driver, a.cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.CreateSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
