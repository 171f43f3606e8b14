package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/morozRed/dfnref/internal/config"
	"github.com/morozRed/dfnref/internal/document"
	"github.com/morozRed/dfnref/internal/logging"
	"github.com/morozRed/dfnref/internal/scanner"
	"github.com/spf13/cobra"
)

func resolveWorkingDirectory() (string, error) {
	rootPath, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return rootPath, nil
}

// newLogger honors -v/-q when given and the configured level otherwise.
func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	level := logging.LevelFromString(cfg.LogLevel)
	quiet, _ := OptionalBoolFlag(cmd, "quiet", false)
	verbosity := 0
	if cmd != nil && cmd.Flags().Lookup("verbose") != nil {
		verbosity, _ = cmd.Flags().GetCount("verbose")
	}
	if quiet || verbosity > 0 {
		level = logging.LevelFromVerbosity(verbosity, quiet)
	}
	return logging.NewLogger(os.Stderr, level)
}

// scanInputs scans args (files or directories, default ".") and logs
// scanner issues. Document paths are made relative to rootPath.
func scanInputs(args []string, rootPath string, logger *slog.Logger) ([]*document.Document, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	registry := scanner.DefaultRegistry()
	files, issues, err := registry.CollectFiles(args)
	if err != nil {
		return nil, err
	}
	result := registry.ScanFiles(files)
	ReportScanIssues(logger, append(issues, result.Issues...))

	for _, doc := range result.Documents {
		rel := relativePath(rootPath, doc.Path)
		for _, def := range doc.Definitions {
			def.Pos.File = rel
		}
		for _, ref := range doc.References {
			ref.Pos.File = rel
		}
		doc.Path = rel
	}
	return result.Documents, nil
}

func ReportScanIssues(logger *slog.Logger, issues []document.ScanIssue) {
	for _, issue := range issues {
		level := slog.LevelWarn
		if issue.Severity == "error" {
			level = slog.LevelError
		}
		logger.Log(context.Background(), level, issue.Message, "file", issue.File, "format", issue.Format)
	}
}

func relativePath(rootPath, path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(rootPath, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
