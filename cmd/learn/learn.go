// Package learn records confirmed classifications
package learn

import (
	"fmt"

	"fjacquet/gl-posting/cmd/root"
	"fjacquet/gl-posting/internal/models"

	"github.com/spf13/cobra"
)

var (
	description string
	glCode      string
	fundCode    string
	module      string
)

// Cmd represents the learn command
var Cmd = &cobra.Command{
	Use:   "learn",
	Short: "Record a confirmed classification for a description",
	Long: `Learn stores a confirmed GL/fund/module for a description in the history store.
Later statements with the same description (reference numbers ignored) are
classified from it.

Example:
  gl-posting learn --description "ACH ADP PAYROLL" --gl 6500 --fund 1000 --module CD`,
	RunE: func(cmd *cobra.Command, args []string) error {
		m, ok := models.ParseModule(module)
		if !ok || m == models.ModuleUnknown {
			return fmt.Errorf("invalid module %q (CR, CD or JV)", module)
		}

		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		if c.GetHistory() == nil {
			c.GetLogger().Warn("History store disabled; the classification only lasts for this run")
		}
		stored, err := c.GetProcessor().Confirm(cmd.Context(), models.Correction{
			Description: description,
			GLCode:      glCode,
			FundCode:    fundCode,
			Module:      m,
			Source:      "cli",
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "learned %q -> GL %s fund %s module %s\n", stored.Key, stored.GLCode, stored.FundCode, stored.Module)
		return nil
	},
}

func init() {
	Cmd.Flags().StringVarP(&description, "description", "d", "", "Transaction description")
	Cmd.Flags().StringVar(&glCode, "gl", "", "GL code")
	Cmd.Flags().StringVar(&fundCode, "fund", models.DefaultFundCode, "Fund code")
	Cmd.Flags().StringVar(&module, "module", string(models.ModuleCD), "Module (CR, CD or JV)")
	_ = Cmd.MarkFlagRequired("description")
	_ = Cmd.MarkFlagRequired("gl")
}
