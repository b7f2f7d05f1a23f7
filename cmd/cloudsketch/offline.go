package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cloudsketch/internal/domain"
	"cloudsketch/internal/loader"
	"cloudsketch/internal/topology"

	"github.com/spf13/cobra"
)

func (a *app) validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check every connection of a sketch file against the rulebook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loader.LoadFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			rejected := loader.Audit(g, domain.DefaultRulebook())
			for _, r := range rejected {
				fmt.Fprintf(out, "REJECTED %s -> %s: %s\n", r.Source, r.Target, r.Reason)
			}
			if len(rejected) > 0 {
				return fmt.Errorf("%d of %d connections rejected", len(rejected), len(g.Edges))
			}

			fmt.Fprintf(out, "OK: %d nodes, %d connections\n", len(g.Nodes), len(g.Edges))
			return nil
		},
	}
}

func (a *app) expandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "expand <file>",
		Short: "Print the physical topology a sketch file implies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loader.LoadFile(args[0])
			if err != nil {
				return err
			}

			exp := topology.Expand(g, a.cfg.TopologyOptions())
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(exp.Request())
		},
	}
}

func (a *app) analyzeCmd() *cobra.Command {
	var scorerURL string

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Score a sketch file and list its critical nodes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loader.LoadFile(args[0])
			if err != nil {
				return err
			}

			scorer, timeout, err := a.newScorer(scorerURL)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			exp := topology.Expand(g, a.cfg.TopologyOptions())
			res, err := scorer.Score(ctx, exp.Request())
			if err != nil {
				return fmt.Errorf("scoring failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Stability score: %d\n", res.StabilityScore)
			fmt.Fprintf(out, "Physical nodes:  %d (%d edges)\n", len(exp.Nodes), len(exp.Edges))
			fmt.Fprintf(out, "Critical (physical): %s\n", joinOrNone(res.CriticalNodes))
			fmt.Fprintf(out, "Critical (logical):  %s\n", joinOrNone(exp.MapCritical(res.CriticalNodes)))
			return nil
		},
	}

	cmd.Flags().StringVar(&scorerURL, "scorer-url", "", "score with a remote HTTP scorer instead of the configured one")
	return cmd
}

func (a *app) rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the connection rulebook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rules := domain.DefaultRulebook()
			out := cmd.OutOrStdout()
			for _, info := range domain.Kinds() {
				targets := rules.AllowedTargets(info.Kind)
				names := make([]string, len(targets))
				for i, t := range targets {
					names[i] = string(t)
				}
				fmt.Fprintf(out, "%-12s -> %s\n", info.Kind, joinOrNone(names))
			}
			return nil
		},
	}
}

func (a *app) convertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a sketch file between JSON and YAML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := loader.LoadFile(args[0])
			if err != nil {
				return err
			}
			if err := loader.SaveFile(g, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d nodes, %d connections)\n", args[1], len(g.Nodes), len(g.Edges))
			return nil
		},
	}
}

func joinOrNone(ids []string) string {
	if len(ids) == 0 {
		return "none"
	}
	return strings.Join(ids, ", ")
}
