// Package classify runs the classification cascade on a single transaction
package classify

import (
	"errors"
	"fmt"
	"io"
	"time"

	"fjacquet/gl-posting/cmd/root"
	"fjacquet/gl-posting/internal/dateutils"
	"fjacquet/gl-posting/internal/models"
	"fjacquet/gl-posting/internal/pipeline"
	"fjacquet/gl-posting/internal/statement"

	"github.com/spf13/cobra"
)

var (
	description string
	amount      string
	date        string
)

// Cmd represents the classify command
var Cmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify one transaction and show the entry it would produce",
	Long: `Classify runs one transaction through the same pipeline as a statement line and
prints the winning classification, every candidate and the journal entry.

Example:
  gl-posting classify --description "SERVICE FEE" --amount -15.00`,
	RunE: classifyFunc,
}

func init() {
	Cmd.Flags().StringVarP(&description, "description", "d", "", "Transaction description")
	Cmd.Flags().StringVarP(&amount, "amount", "a", "", "Signed amount; negative for withdrawals")
	Cmd.Flags().StringVarP(&date, "date", "t", "", "Transaction date (defaults to today)")
	_ = Cmd.MarkFlagRequired("description")
	_ = Cmd.MarkFlagRequired("amount")
}

// Line renders a transaction in the generic template's ISO layout.
func Line(day time.Time, description, amount string) (string, error) {
	amt, err := statement.ParseAmount(amount)
	if err != nil {
		return "", fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	sign := "+"
	if amt.Value.IsNegative() {
		sign = "-"
	}
	return fmt.Sprintf("%s %s %s%s", dateutils.ToISODate(day), description, sign, amt.Value.Abs().StringFixed(2)), nil
}

func classifyFunc(cmd *cobra.Command, args []string) error {
	day := time.Now()
	if date != "" {
		parsed, _, err := dateutils.ParseDate(date)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", date, err)
		}
		day = parsed
	}
	line, err := Line(day, description, amount)
	if err != nil {
		return err
	}

	c, err := root.GetContainer()
	if err != nil {
		return err
	}
	p := c.GetProcessor()
	res, err := p.Process(cmd.Context(), pipeline.Input{
		Lines: statement.SplitLines(line),
		Bank:  c.GetRegistry().Generic().Name,
	})
	if err != nil {
		return err
	}
	defer p.Discard(res.SessionKey)
	if len(res.Postings) == 0 {
		return errors.New("the transaction could not be parsed")
	}

	printPosting(cmd.OutOrStdout(), res.Postings[0])
	return nil
}

func printPosting(w io.Writer, p pipeline.Posting) {
	r := p.Result
	if r.Found() {
		fmt.Fprintf(w, "GL %s  fund %s  module %s  confidence %.2f (%s)  matched by %s\n",
			r.GLCode, r.FundCode, p.Entry.Module, r.Confidence, r.Band(), r.MatchedBy)
	} else {
		fmt.Fprintf(w, "unclassified, module %s\n", p.Entry.Module)
	}
	if r.Category != "" || r.Payee != "" {
		fmt.Fprintf(w, "  category: %s  payee: %s\n", r.Category, r.Payee)
	}
	for _, c := range p.Candidates {
		fmt.Fprintf(w, "  candidate %-10s GL %-6s %.2f\n", c.MatchedBy, c.GLCode, c.Confidence)
	}
	for _, l := range p.Entry.Lines {
		fmt.Fprintf(w, "  %-6s %-6s debit %10s credit %10s\n", l.GLCode, l.FundCode, l.Debit.StringFixed(2), l.Credit.StringFixed(2))
	}
	if p.Entry.NeedsReview {
		fmt.Fprintf(w, "  needs review: %s\n", models.JoinReasons(p.Entry.ReviewReasons))
	}
}
