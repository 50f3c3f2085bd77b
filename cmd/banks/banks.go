// Package banks lists the registered bank templates
package banks

import (
	"fmt"

	"fjacquet/gl-posting/cmd/root"

	"github.com/spf13/cobra"
)

// Cmd represents the banks command
var Cmd = &cobra.Command{
	Use:   "banks",
	Short: "List bank templates in detection order",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := root.GetContainer()
		if err != nil {
			return err
		}
		reg := c.GetRegistry()
		out := cmd.OutOrStdout()
		for _, t := range reg.Banks() {
			fmt.Fprintf(out, "%-20s %v\n", t.Name, t.Identifiers)
		}
		fmt.Fprintf(out, "%-20s (fallback)\n", reg.Generic().Name)
		return nil
	},
}
