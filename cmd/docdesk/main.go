// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// docdesk is a terminal workspace for asking questions about a PDF. The
// document is previewed in the left pane; the right pane is a chat with
// a question-answering backend that receives the file on upload and
// answers questions about it for the life of the session.
//
// The backend is an HTTP service with two endpoints, upload/ and
// query/, resolved against --server (or server.base_url in the config
// file).
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/docdesk/cmd/docdesk/cli"
	"github.com/bureau-foundation/docdesk/lib/config"
	"github.com/bureau-foundation/docdesk/lib/docqa"
	"github.com/bureau-foundation/docdesk/lib/document"
	"github.com/bureau-foundation/docdesk/lib/layout"
	"github.com/bureau-foundation/docdesk/lib/version"
	"github.com/bureau-foundation/docdesk/lib/workspace"
	"github.com/bureau-foundation/docdesk/lib/zoom"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if coder, ok := err.(interface{ ExitCode() int }); ok {
			os.Exit(coder.ExitCode())
		}
		os.Exit(1)
	}
}

// flags holds the parsed command line.
type flags struct {
	configPath string
	server     string
	document   string
	logOutput  string
}

func run(args []string, stdout io.Writer) error {
	var parsed flags

	flagSet := pflag.NewFlagSet("docdesk", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&parsed.configPath, "config", "", "path to a YAML or JSONC config file (default: $"+config.EnvironmentVariable+")")
	flagSet.StringVar(&parsed.server, "server", "", "backend base URL (overrides server.base_url)")
	flagSet.StringVar(&parsed.document, "document", "", "PDF to open and upload at startup")
	flagSet.StringVar(&parsed.logOutput, "log-output", "", "write JSON log records to this file (in addition to the status bar)")
	flagSet.Bool("version", false, "print version information")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(stdout, flagSet)
			return nil
		}
		return cli.Validation("%w", err).WithHint("Run 'docdesk --help' for usage.")
	}

	if showVersion, _ := flagSet.GetBool("version"); showVersion {
		version.Print(stdout, "docdesk")
		return nil
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(stdout, flagSet)
		return nil
	}

	if rest := flagSet.Args(); len(rest) > 0 {
		return cli.Validation("unexpected argument: %s", rest[0]).
			WithHint("Open a file at startup with --document <path>.")
	}

	cfg, err := loadConfig(parsed)
	if err != nil {
		return err
	}

	documentPath, err := checkDocument(parsed.document)
	if err != nil {
		return err
	}

	client, err := docqa.NewClient(cfg.Server.BaseURL, docqa.WithTimeout(cfg.RequestTimeout()))
	if err != nil {
		return cli.Validation("%w", err)
	}

	commandLogger := cli.NewCommandLogger(cfg.SlogLevel())
	commandLogger.Debug("starting workspace",
		"backend", client.BaseURL(),
		"environment", cfg.Environment,
		"document", documentPath,
	)

	// Inside the alt screen, stderr would corrupt the display, so
	// records go to the status bar and optionally to a file.
	statusHandler := workspace.NewStatusLogHandler(cfg.SlogLevel())
	var logger *slog.Logger
	if cfg.Logging.Output != "" {
		fileHandler, closeFile, err := openFileLogHandler(cfg.Logging.Output)
		if err != nil {
			return cli.Validation("cannot open log file %s: %w", cfg.Logging.Output, err)
		}
		defer closeFile()
		logger = slog.New(fanoutHandler{statusHandler, fileHandler})
	} else {
		logger = slog.New(statusHandler)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	model := workspace.NewModel(workspaceOptions(ctx, cfg, client, documentPath, logger))
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)
	statusHandler.SetProgram(program)

	if _, err := program.Run(); err != nil {
		return cli.Internal("running workspace: %w", err)
	}
	return nil
}

// loadConfig reads the config file, applies flag overrides and
// validates the result.
func loadConfig(parsed flags) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if parsed.configPath != "" {
		cfg, err = config.LoadFile(parsed.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, cli.NotFound("loading config: %w", err).
				WithHint("Pass an existing file to --config, or unset " + config.EnvironmentVariable + " to use the defaults.")
		}
		return nil, cli.Validation("loading config: %w", err)
	}

	if parsed.server != "" {
		cfg.Server.BaseURL = parsed.server
	}
	if parsed.logOutput != "" {
		cfg.Logging.Output = parsed.logOutput
	}

	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid configuration:\n%w", err)
	}
	return cfg, nil
}

// checkDocument opens the startup document the way the workspace will,
// so a path the workspace could not open fails before the screen is
// taken over. It returns the resolved absolute path, or "" when no
// document was named.
func checkDocument(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	source, err := document.OpenFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", cli.NotFound("document %s does not exist", path)
		}
		return "", cli.Validation("cannot open document %s: %w", path, err)
	}
	return source.Path, nil
}

// workspaceOptions translates a validated config into workspace options.
func workspaceOptions(ctx context.Context, cfg *config.Config, backend *docqa.Client, documentPath string, logger *slog.Logger) workspace.Options {
	modifier, err := workspace.ParseModifier(cfg.Zoom.Modifier)
	if err != nil {
		modifier = workspace.ModifierShift
	}
	return workspace.Options{
		Backend: backend,
		Layout: layout.Config{
			MinWidth:     cfg.Layout.MinWidth,
			InitialWidth: cfg.Layout.InitialWidth,
		},
		Zoom: zoom.Config{
			Step:  cfg.Zoom.Step,
			Floor: cfg.Zoom.Floor,
		},
		ZoomModifier:   modifier,
		RequestTimeout: cfg.RequestTimeout(),
		Document:       documentPath,
		Logger:         logger,
		Context:        ctx,
	}
}

func printHelp(output io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(output, `docdesk: ask questions about a PDF from the terminal.

The left pane previews the document; the right pane is a chat with the
question-answering backend. Open a file with ctrl+o, switch panes with
tab, and quit with ctrl+c. Drag the divider with the mouse, or
double-click it to swap between a wide and a narrow preview. Hold the
zoom modifier (shift by default) while scrolling over the preview to
zoom.

Usage:
  docdesk [flags]

Examples:
  # Start against a local backend
  docdesk --server http://localhost:8000/

  # Open and upload a document at startup
  docdesk --document ~/papers/report.pdf

  # Use a config file and keep a debug log
  docdesk --config ~/.config/docdesk.yaml --log-output /tmp/docdesk.log

Flags:
`)
	flagSet.SetOutput(output)
	flagSet.PrintDefaults()
}
