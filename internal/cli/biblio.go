package cli

import (
	"fmt"
	"strings"

	"github.com/morozRed/dfnref/internal/check"
	"github.com/morozRed/dfnref/internal/fileutil"
	"github.com/spf13/cobra"
)

type BiblioRecord struct {
	File        string   `json:"file"`
	Normative   []string `json:"normative"`
	Informative []string `json:"informative"`
}

func RunBiblio(cmd *cobra.Command, args []string) error {
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

	records := make([]BiblioRecord, 0, len(docs))
	for _, doc := range docs {
		res, err := check.Document(doc, checkOptions(cfg, logger))
		if err != nil {
			return err
		}
		records = append(records, BiblioRecord{
			File:        doc.Path,
			Normative:   res.Normative,
			Informative: res.Informative,
		})
	}

	if asJSON {
		return fileutil.PrintJSON(records)
	}
	for _, rec := range records {
		fmt.Printf("%s\n", rec.File)
		fmt.Printf("  normative (%d): %s\n", len(rec.Normative), strings.Join(rec.Normative, ", "))
		fmt.Printf("  informative (%d): %s\n", len(rec.Informative), strings.Join(rec.Informative, ", "))
	}
	return nil
}
