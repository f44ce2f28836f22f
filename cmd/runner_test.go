package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/curator/internal/shared"
	"github.com/desertthunder/curator/internal/tasks"
	tu "github.com/desertthunder/curator/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			db := tu.NewTestDB(t)
			taxonomy := tu.NewMockTaxonomy()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				DB:         db,
				Taxonomy:   taxonomy,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.db != db {
				t.Error("expected db to be set")
			}
			if runner.taxonomy != taxonomy {
				t.Error("expected taxonomy to be set")
			}
			if runner.engine != nil {
				t.Error("expected engine to be built lazily")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("open", func(t *testing.T) {
		t.Run("wires engine on injected database", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{DB: tu.NewTestDB(t), Taxonomy: tu.NewMockTaxonomy(), Logger: shared.NewLogger(io.Discard)})

			if err := runner.open(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if runner.engine == nil || runner.seeder == nil || runner.catalog == nil {
				t.Fatal("expected engine, seeder and catalog to be built")
			}

			engine := runner.engine
			if err := runner.open(); err != nil {
				t.Fatalf("expected second open to succeed, got %v", err)
			}
			if runner.engine != engine {
				t.Error("expected open to be idempotent")
			}
			if err := runner.Close(); err != nil {
				t.Errorf("Close should not fail on injected database: %v", err)
			}
		})

		t.Run("opens configured database", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Database.Path = filepath.Join(t.TempDir(), "curator.db")
			runner := NewRunner(RunnerOpts{Config: config, Logger: shared.NewLogger(io.Discard)})

			if err := runner.open(); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if !runner.ownsDB {
				t.Error("expected runner to own the database it opened")
			}
			if runner.taxonomy == nil {
				t.Error("expected taxonomy client to be built from config")
			}
			if err := runner.Close(); err != nil {
				t.Errorf("expected Close to succeed, got %v", err)
			}
			tu.AssertFileExists(t, config.Database.Path)
		})
	})

	t.Run("loadConfig", func(t *testing.T) {
		t.Run("reads config file and log level", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			content := "[database]\npath = \"/tmp/custom.db\"\n\n[log]\nlevel = \"debug\"\n"
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: io.Discard, DB: tu.NewTestDB(t)})
			if err := runner.app().Run(context.Background(), []string{"curator", "--config", path, "edits", "list"}); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if runner.config.Database.Path != "/tmp/custom.db" {
				t.Errorf("expected database path from file, got %s", runner.config.Database.Path)
			}
			if runner.logger.GetLevel() != log.DebugLevel {
				t.Errorf("expected debug level, got %v", runner.logger.GetLevel())
			}
		})

		t.Run("missing file keeps defaults", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "missing.toml")

			runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: io.Discard, DB: tu.NewTestDB(t)})
			err := runner.app().Run(context.Background(), []string{"curator", "--config", path, "--log-level", "warn", "edits", "list"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if runner.config.Database.Path != shared.DefaultConfig().Database.Path {
				t.Errorf("expected default database path, got %s", runner.config.Database.Path)
			}
			if runner.configPath != path {
				t.Errorf("expected configPath %s, got %s", path, runner.configPath)
			}
			if runner.logger.GetLevel() != log.WarnLevel {
				t.Errorf("expected warn level, got %v", runner.logger.GetLevel())
			}
		})

		t.Run("invalid file fails", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte("[matcher]\nmax_scan = -1\n"), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard), Output: io.Discard, DB: tu.NewTestDB(t)})
			if err := runner.app().Run(context.Background(), []string{"curator", "--config", path, "edits", "list"}); err == nil {
				t.Fatal("expected invalid config error")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			expected := `{"key":"value"}` + "\n"
			if result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			// channels cannot be marshaled to JSON
			data := make(chan int)
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			data := map[string]string{"key": "value"}
			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			data := map[string]string{"key": "value"}
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(data, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writePlain("hello %s", "world")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			failing := &tu.FWriter{}
			runner := NewRunner(RunnerOpts{Output: failing})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("writeSummary", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		runner.writeSummary("Sync Complete", &tasks.Summary{Added: 2, Failed: 1, Total: 3, Errors: []string{"product 7: declined"}})

		result := output.String()
		for _, want := range []string{"Sync Complete", "Changed: 2", "Failed:  1", "Total:   3", "- product 7: declined"} {
			if !strings.Contains(result, want) {
				t.Errorf("expected %q in output, got:\n%s", want, result)
			}
		}
	})

	t.Run("withProgress", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		runner.withProgress(func(progress chan<- tasks.ProgressUpdate) {
			progress <- tasks.ProgressUpdate{Phase: tasks.ScanCatalog, Message: "Scanning catalog..."}
			progress <- tasks.ProgressUpdate{Phase: tasks.SyncMemberships, Message: "+ product 1"}
		})

		result := output.String()
		if !strings.Contains(result, "Scanning catalog...\n") || !strings.Contains(result, "   + product 1\n") {
			t.Errorf("expected progress lines, got %q", result)
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})
}
