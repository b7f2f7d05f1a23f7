package main

import (
	"fmt"
	"time"

	"cloudsketch/internal/analysis"
	"cloudsketch/internal/config"
	"cloudsketch/internal/logging"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app carries state shared by every subcommand
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "cloudsketch",
		Short: "Sketch cloud architectures and find their single points of failure",
		Long: `cloudsketch serves an editor backend for logical cloud sketches. Sketches
are expanded into the physical topology they imply and scored for
resilience. The offline commands work on sketch files directly.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: search standard locations)")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level override (trace, debug, info, warn, error)")

	rootCmd.AddCommand(
		a.serveCmd(),
		a.validateCmd(),
		a.expandCmd(),
		a.analyzeCmd(),
		a.rulesCmd(),
		a.convertCmd(),
	)
	return rootCmd
}

func (a *app) loadConfig() error {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if a.configPath != "" {
		cfg, path, err = config.LoadFromPath(a.configPath)
	} else {
		cfg, path, err = config.Load()
	}
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if err := logging.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}

	if path != "" {
		log.Debug().Str("path", path).Msg("Configuration loaded")
	}
	a.cfg = cfg
	return nil
}

// newScorer builds the configured scorer. url overrides the config.
func (a *app) newScorer(url string) (analysis.Scorer, time.Duration, error) {
	timeout := a.cfg.Analysis.Timeout.Duration()
	if url != "" {
		return analysis.NewHTTPScorer(url, timeout), timeout, nil
	}

	switch a.cfg.Analysis.Scorer {
	case config.ScorerGraph:
		return analysis.NewGraphScorer(), timeout, nil
	case config.ScorerHTTP:
		return analysis.NewHTTPScorer(a.cfg.Analysis.URL, timeout), timeout, nil
	}
	return nil, 0, fmt.Errorf("unknown scorer %q", a.cfg.Analysis.Scorer)
}
