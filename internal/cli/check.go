package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/morozRed/dfnref/internal/check"
	"github.com/morozRed/dfnref/internal/config"
	"github.com/morozRed/dfnref/internal/diag"
	"github.com/morozRed/dfnref/internal/report"
	"github.com/spf13/cobra"
)

// ErrCheckFailed is returned when a check finds error diagnostics.
var ErrCheckFailed = errors.New("check failed")

func RunCheck(cmd *cobra.Command, args []string) error {
	start := time.Now()
	rootPath, err := resolveWorkingDirectory()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, rootPath)
	if err != nil {
		return err
	}
	asJSON, err := OptionalBoolFlag(cmd, "json", false)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	docs, err := scanInputs(args, rootPath, logger)
	if err != nil {
		return fmt.Errorf("failed to scan documents: %w", err)
	}

	outDir := cfg.OutputDir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(rootPath, outDir)
	}
	rep, err := loadReport(outDir, logger)
	if err != nil {
		return err
	}

	summary := CheckSummary{
		Mode:      "check",
		RootPath:  rootPath,
		OutputDir: outDir,
		XRef:      cfg.XRef,
	}
	results := make([]*check.Result, 0, len(docs))
	for _, doc := range docs {
		if !rep.HasChanged(doc.Path, doc.Hash) {
			summary.Unchanged++
		}
		res, err := check.Document(doc, checkOptions(cfg, logger))
		if err != nil {
			return err
		}
		results = append(results, res)
		rep.SetDocument(doc.Path, report.NewDocumentReport(doc, res.Diagnostics, res.Normative, res.Informative))
		summary.add(res)
	}
	if removed := rep.PruneMissing(rootPath); len(removed) > 0 {
		logger.Info("removed stale report entries", "paths", SummarizePaths(removed, 5))
	}
	summary.ReportOutcomes = rep.Outcomes()

	wrote, err := rep.WriteReferences(outDir, report.Records(docs))
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", report.ReferencesFile, err)
	}
	summary.ReferencesWritten = wrote
	if err := rep.Save(outDir); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}
	summary.DurationMS = time.Since(start).Milliseconds()

	if !asJSON {
		PrintDiagnostics(results)
	}
	if err := PrintCheckSummary(summary, asJSON); err != nil {
		return err
	}
	if summary.Errors > 0 {
		return fmt.Errorf("%w: %d error(s)", ErrCheckFailed, summary.Errors)
	}
	return nil
}

func checkOptions(cfg *config.Config, logger *slog.Logger) check.Options {
	return check.Options{
		ShortName:   cfg.ShortName,
		XRef:        cfg.XRef,
		Workers:     cfg.Workers,
		Suggestions: cfg.Suggestions,
		Normative:   cfg.NormativeReferences,
		Informative: cfg.InformativeReferences,
		Logger:      logger,
	}
}

// loadReport starts over when the stored report is corrupt.
func loadReport(outDir string, logger *slog.Logger) (*report.Report, error) {
	rep, err := report.Load(outDir)
	if err == nil {
		return rep, nil
	}
	if isCorruptReportError(err) {
		logger.Warn("corrupt report detected; starting fresh", "error", err)
		return report.New(), nil
	}
	return nil, fmt.Errorf("failed to load report: %w", err)
}

func isCorruptReportError(err error) bool {
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return true
	}
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &typeErr)
}

func diagnosticsOf(results []*check.Result) []diag.Diagnostic {
	out := make([]diag.Diagnostic, 0)
	for _, res := range results {
		out = append(out, res.Diagnostics...)
	}
	return out
}
