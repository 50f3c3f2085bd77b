// Package process handles the statement processing command
package process

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fjacquet/gl-posting/cmd/root"
	"fjacquet/gl-posting/internal/container"
	"fjacquet/gl-posting/internal/extractor"
	"fjacquet/gl-posting/internal/logging"
	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/pipeline"

	"github.com/spf13/cobra"
)

var (
	bank     string
	commit   bool
	workbook bool
)

// Cmd represents the process command
var Cmd = &cobra.Command{
	Use:   "process",
	Short: "Process a bank statement into journal entries",
	Long: `Process extracts the statement text, parses it with the matching bank template
(or the generic one), classifies and routes every transaction, flags duplicates and
writes CR.csv, CD.csv, JV.csv and review.csv to the output directory.
When the input is a directory every supported file is processed as its own batch
into a subdirectory named after the file.

Example:
  gl-posting process -i statement.pdf -o out/ --commit
  gl-posting process -i statements/ -o out/`,
	RunE: processFunc,
}

func init() {
	Cmd.Flags().StringVar(&bank, "bank", "", "Force a bank template instead of detecting it")
	Cmd.Flags().BoolVar(&commit, "commit", false, "Record posted fingerprints in the history store")
	Cmd.Flags().BoolVar(&workbook, "xlsx", false, "Also write an XLSX workbook")
}

func processFunc(cmd *cobra.Command, args []string) error {
	input := root.SharedFlags.Input
	if input == "" && len(args) > 0 {
		input = args[0]
	}
	if input == "" {
		return errors.New("an input file is required (-i)")
	}

	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	outDir := root.SharedFlags.Output
	if outDir == "" {
		outDir = c.GetConfig().Export.Directory
	}

	info, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", input, err)
	}
	if !info.IsDir() {
		return processFile(cmd, c, input, outDir)
	}

	files, err := extractor.Scan(input)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no statement files found in %s", input)
	}
	failed := 0
	for _, file := range files {
		stem := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
		if err := processFile(cmd, c, file, filepath.Join(outDir, stem)); err != nil {
			failed++
			c.GetLogger().WithError(err).Error("Failed to process statement", logging.F(logging.FieldFile, file))
		}
	}
	c.GetLogger().Info("Directory processed",
		logging.F(logging.FieldCount, len(files)),
		logging.F("failed", failed))
	if failed == len(files) {
		return fmt.Errorf("all %d statements in %s failed", failed, input)
	}
	return nil
}

func processFile(cmd *cobra.Command, c *container.Container, input, outDir string) error {
	logger := c.GetLogger()
	ctx := cmd.Context()

	doc, err := c.GetExtractors().Extract(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", input, err)
	}

	res, err := c.GetProcessor().Process(ctx, pipeline.Input{Lines: doc.Lines, File: doc.Meta, Bank: bank})
	if err != nil {
		return err
	}

	written, err := c.GetExporter().WriteBatch(res, outDir)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if workbook {
		path := filepath.Join(outDir, "gl-posting_"+res.BatchID+".xlsx")
		if err := c.GetExporter().WriteWorkbook(res, path); err != nil {
			return fmt.Errorf("failed to write workbook: %w", err)
		}
		written = append(written, path)
	}

	if commit {
		n, err := c.GetProcessor().Commit(ctx, res.SessionKey)
		if err != nil {
			logger.WithError(err).Warn("Batch not committed")
		} else {
			logger.Info("Recorded posted transactions", logging.F(logging.FieldCount, n))
		}
	}

	printSummary(cmd.OutOrStdout(), res, written)
	return nil
}

func printSummary(w io.Writer, res *pipeline.BatchResult, written []string) {
	s := res.Summary
	fmt.Fprintf(w, "Batch %s (%s)\n", res.BatchID, res.Bank)
	if res.RequiresOCR {
		fmt.Fprintln(w, "  note: this bank's statements usually need OCR; check amounts carefully")
	}
	fmt.Fprintf(w, "  transactions: %d  deposits: %s  withdrawals: %s\n",
		s.Transactions, s.Deposits.StringFixed(2), s.Withdrawals.StringFixed(2))
	for _, m := range append(append([]models.Module(nil), models.PostingModules...), models.ModuleUnknown) {
		fmt.Fprintf(w, "  %-8s %d\n", m, s.ByModule[m])
	}
	fmt.Fprintf(w, "  needs review: %d  duplicates: %d  unbalanced: %d\n", s.NeedsReview, s.Duplicates, s.Unbalanced)

	matchers := make([]string, 0, len(s.ByMatcher))
	for name := range s.ByMatcher {
		matchers = append(matchers, name)
	}
	sort.Strings(matchers)
	for _, name := range matchers {
		fmt.Fprintf(w, "  matched by %-10s %d\n", name, s.ByMatcher[name])
	}
	for _, warning := range res.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
	for _, path := range written {
		fmt.Fprintf(w, "  wrote %s\n", path)
	}
}
