package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ekaya-inc/clearbrief/pkg/graph"
	"github.com/ekaya-inc/clearbrief/pkg/seed"
	"github.com/ekaya-inc/clearbrief/pkg/server"
	"github.com/ekaya-inc/clearbrief/pkg/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the workspace over HTTP and MCP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadEnvironment()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		logger.Info("Configuration loaded",
			zap.String("env", cfg.Env),
			zap.String("base_url", cfg.BaseURL),
			zap.String("seed", server.SeedSource(cfg).Name()),
			zap.Bool("seed_watch", cfg.Seed.Watch),
			zap.Bool("realtime", cfg.Realtime.Enabled),
			zap.Bool("llm", cfg.Chat.LLMEnabled()))

		app, err := server.New(cfg, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return app.Run(ctx)
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Inspect the workspace dataset",
}

var seedValidateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check a seed document, or the embedded one when no path is given",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		source := seed.Embedded()
		if len(args) == 1 {
			source = seed.File(args[0])
		}
		return validateSeed(cmd.OutOrStdout(), source)
	},
}

func validateSeed(w io.Writer, source seed.Source) error {
	data, err := source.Load()
	if err != nil {
		return err
	}
	if err := seed.Validate(data); err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s: %d projects OK\n", source.Name(), len(data.Projects))
	return err
}

var graphFlags struct {
	project string
	graph   string
	filter  string
	format  string
	out     string
}

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Knowledge graph tools",
}

var graphRenderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a project's knowledge graph to PNG or SVG",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadEnvironment()
		if err != nil {
			return err
		}
		app, err := server.New(cfg, logger)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		q := services.GraphQuery{
			Graph:  services.ParseGraphType(graphFlags.graph),
			Filter: graphFlags.filter,
			Scale:  1,
		}
		if err := app.Graph.Render(cmd.Context(), &buf, graphFlags.project, q, graphFlags.format); err != nil {
			return err
		}

		if graphFlags.out == "" || graphFlags.out == "-" {
			_, err = cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}
		if err := os.WriteFile(graphFlags.out, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", graphFlags.out, err)
		}
		_, err = fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", graphFlags.out, buf.Len())
		return err
	},
}

var spotrepFlags struct {
	project string
	version string
	stdout  bool
}

var spotrepCmd = &cobra.Command{
	Use:   "spotrep",
	Short: "SPOTREP tools",
}

var spotrepCopyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Copy a SPOTREP's text to the clipboard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadEnvironment()
		if err != nil {
			return err
		}
		app, err := server.New(cfg, logger)
		if err != nil {
			return err
		}

		text, err := app.Spotrep.CopyText(cmd.Context(), spotrepFlags.project, spotrepFlags.version)
		if err != nil {
			return err
		}
		return copyText(cmd.OutOrStdout(), cmd.ErrOrStderr(), text, spotrepFlags.stdout, logger)
	},
}

// copyText puts text on the clipboard, printing it instead when asked to or
// when no clipboard is available.
func copyText(stdout, stderr io.Writer, text string, toStdout bool, logger *zap.Logger) error {
	if !toStdout && !clipboard.Unsupported {
		err := clipboard.WriteAll(text)
		if err == nil {
			_, err = fmt.Fprintln(stderr, "Copied SPOTREP to clipboard")
			return err
		}
		logger.Warn("Clipboard unavailable, printing instead", zap.Error(err))
	}
	_, err := fmt.Fprintln(stdout, text)
	return err
}

func init() {
	seedCmd.AddCommand(seedValidateCmd)

	graphRenderCmd.Flags().StringVar(&graphFlags.project, "project", "", "project id")
	graphRenderCmd.Flags().StringVar(&graphFlags.graph, "graph", string(services.GraphTypeCombined), "military or combined")
	graphRenderCmd.Flags().StringVar(&graphFlags.filter, "filter", graph.FilterAll, "entity type filter")
	graphRenderCmd.Flags().StringVar(&graphFlags.format, "format", services.ImageFormatPNG, "png or svg")
	graphRenderCmd.Flags().StringVarP(&graphFlags.out, "out", "o", "", "output file, stdout when empty")
	_ = graphRenderCmd.MarkFlagRequired("project")
	graphCmd.AddCommand(graphRenderCmd)

	spotrepCopyCmd.Flags().StringVar(&spotrepFlags.project, "project", "", "project id")
	spotrepCopyCmd.Flags().StringVar(&spotrepFlags.version, "version", "", "SPOTREP version, latest when empty")
	spotrepCopyCmd.Flags().BoolVar(&spotrepFlags.stdout, "stdout", false, "print instead of copying")
	_ = spotrepCopyCmd.MarkFlagRequired("project")
	spotrepCmd.AddCommand(spotrepCopyCmd)
}
