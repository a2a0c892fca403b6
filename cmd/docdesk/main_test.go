// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/docdesk/cmd/docdesk/cli"
	"github.com/bureau-foundation/docdesk/lib/config"
	"github.com/bureau-foundation/docdesk/lib/docqa"
	"github.com/bureau-foundation/docdesk/lib/workspace"
)

func TestRunVersion(t *testing.T) {
	var output bytes.Buffer
	if err := run([]string{"--version"}, &output); err != nil {
		t.Fatalf("run --version: %v", err)
	}
	if !strings.HasPrefix(output.String(), "docdesk ") {
		t.Errorf("version output: %q", output.String())
	}
}

func TestRunHelp(t *testing.T) {
	var output bytes.Buffer
	if err := run([]string{"--help"}, &output); err != nil {
		t.Fatalf("run --help: %v", err)
	}
	for _, want := range []string{"Usage:", "--server", "--document", "--log-output"} {
		if !strings.Contains(output.String(), want) {
			t.Errorf("help output missing %q", want)
		}
	}
}

func TestRunRejectsBadInvocations(t *testing.T) {
	t.Setenv(config.EnvironmentVariable, "")
	directory := t.TempDir()

	invalidConfig := filepath.Join(directory, "invalid.yaml")
	if err := os.WriteFile(invalidConfig, []byte("zoom:\n  modifier: meta\n"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		args     []string
		category cli.ErrorCategory
		contains string
	}{
		{
			name:     "unknown flag",
			args:     []string{"--zoomy"},
			category: cli.CategoryValidation,
			contains: "zoomy",
		},
		{
			name:     "positional argument",
			args:     []string{"report.pdf"},
			category: cli.CategoryValidation,
			contains: "unexpected argument: report.pdf",
		},
		{
			name:     "missing config file",
			args:     []string{"--config", filepath.Join(directory, "absent.yaml")},
			category: cli.CategoryNotFound,
			contains: "loading config",
		},
		{
			name:     "config that does not validate",
			args:     []string{"--config", invalidConfig},
			category: cli.CategoryValidation,
			contains: "zoom.modifier",
		},
		{
			name:     "server flag that does not validate",
			args:     []string{"--server", "ftp://example.com/"},
			category: cli.CategoryValidation,
			contains: "server.base_url",
		},
		{
			name:     "missing document",
			args:     []string{"--document", filepath.Join(directory, "absent.pdf")},
			category: cli.CategoryNotFound,
			contains: "absent.pdf does not exist",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := run(test.args, &bytes.Buffer{})
			var toolErr *cli.ToolError
			if !errors.As(err, &toolErr) {
				t.Fatalf("expected ToolError, got %v", err)
			}
			if toolErr.Category != test.category {
				t.Errorf("category = %q, want %q", toolErr.Category, test.category)
			}
			if !strings.Contains(err.Error(), test.contains) {
				t.Errorf("error %q does not contain %q", err, test.contains)
			}
		})
	}
}

func TestLoadConfigFlagOverrides(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "docdesk.yaml")
	content := "server:\n  base_url: http://file:1/\nlogging:\n  output: /var/log/file.log\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(flags{
		configPath: configPath,
		server:     "https://flag.example.com/",
		logOutput:  "/tmp/flag.log",
	})
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Server.BaseURL != "https://flag.example.com/" {
		t.Errorf("base_url = %s, want the flag value", cfg.Server.BaseURL)
	}
	if cfg.Logging.Output != "/tmp/flag.log" {
		t.Errorf("output = %s, want the flag value", cfg.Logging.Output)
	}
}

func TestWorkspaceOptions(t *testing.T) {
	cfg := config.Default()
	cfg.Zoom.Modifier = "alt"
	cfg.Zoom.Step = 0.25
	cfg.Layout.InitialWidth = 72
	cfg.Server.Timeout = "30s"

	client, err := docqa.NewClient(cfg.Server.BaseURL)
	if err != nil {
		t.Fatal(err)
	}

	options := workspaceOptions(context.Background(), cfg, client, "report.pdf", slog.New(slog.DiscardHandler))
	if options.ZoomModifier != workspace.ModifierAlt {
		t.Errorf("modifier = %s, want alt", options.ZoomModifier)
	}
	if options.Zoom.Step != 0.25 {
		t.Errorf("zoom step = %g, want 0.25", options.Zoom.Step)
	}
	if options.Layout.InitialWidth != 72 {
		t.Errorf("initial width = %d, want 72", options.Layout.InitialWidth)
	}
	if options.RequestTimeout != 30*time.Second {
		t.Errorf("timeout = %s, want 30s", options.RequestTimeout)
	}
	if options.Document != "report.pdf" {
		t.Errorf("document = %q", options.Document)
	}
}

func TestFanoutHandler(t *testing.T) {
	var quiet, verbose bytes.Buffer
	handler := fanoutHandler{
		slog.NewJSONHandler(&quiet, &slog.HandlerOptions{Level: slog.LevelWarn}),
		slog.NewJSONHandler(&verbose, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}
	logger := slog.New(handler).With("document", "report.pdf")

	logger.Debug("page rendered")
	logger.Error("upload failed")

	if lines := strings.Count(quiet.String(), "\n"); lines != 1 {
		t.Errorf("warn handler got %d records, want 1", lines)
	}
	if lines := strings.Count(verbose.String(), "\n"); lines != 2 {
		t.Errorf("debug handler got %d records, want 2", lines)
	}

	var record map[string]any
	if err := json.Unmarshal(quiet.Bytes(), &record); err != nil {
		t.Fatalf("decoding record: %v", err)
	}
	if record["document"] != "report.pdf" {
		t.Errorf("attrs not propagated: %v", record)
	}
}

func TestOpenFileLogHandler(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docdesk.log")
	handler, closeFile, err := openFileLogHandler(path)
	if err != nil {
		t.Fatalf("openFileLogHandler: %v", err)
	}
	slog.New(handler).Debug("opened", "pages", 3)
	closeFile()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"msg":"opened"`) {
		t.Errorf("log file: %q", data)
	}

	if _, _, err := openFileLogHandler(filepath.Join(t.TempDir(), "missing", "docdesk.log")); err == nil {
		t.Error("expected error for a missing directory")
	}
}

func TestCheckDocumentExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	if err := os.WriteFile(filepath.Join(home, "x.pdf"), []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatal(err)
	}

	path, err := checkDocument("~/x.pdf")
	if err != nil {
		t.Fatalf("checkDocument(~/x.pdf): %v", err)
	}
	if want := filepath.Join(home, "x.pdf"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	if path, err := checkDocument(""); err != nil || path != "" {
		t.Errorf("checkDocument(\"\") = %q, %v; want empty and no error", path, err)
	}

	_, err = checkDocument(home)
	var toolErr *cli.ToolError
	if !errors.As(err, &toolErr) || toolErr.Category != cli.CategoryValidation {
		t.Errorf("directory: expected validation error, got %v", err)
	}
}
