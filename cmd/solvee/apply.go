package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njchilds90/solvee"
)

func newApplyCmd(a *app) *cobra.Command {
	var expect string
	cmd := &cobra.Command{
		Use:   "apply <equation> <operation[:argument]>...",
		Short: "Apply operations one after another",
		Long: `apply starts from the equation and applies each operation to the equation
the previous one produced first. Arguments follow a colon.`,
		Example: `  solvee apply "2x + 4 = 10" subtract:4 divide:2
  solvee apply "x^4 - 5x^2 + 4 = 0" substitute:x^2 quadratic_formula`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(expect)
			if err != nil {
				return err
			}
			if err := s.SetEquationText(args[0]); err != nil {
				return err
			}
			for _, step := range args[1:] {
				name, arg := solvee.ParseStep(step)
				if _, err := s.Apply(name, arg); err != nil {
					return fmt.Errorf("step %q: %w", step, err)
				}
			}
			if err := a.report(cmd.OutOrStdout(), s); err != nil {
				return err
			}
			if expect != "" && !s.Valid() {
				return errMismatch
			}
			return nil
		},
	}
	cmd.Flags().String("format", "text", "Output format (text, json)")
	cmd.Flags().String("hints", "", "YAML file with additional hint rules")
	cmd.Flags().StringSlice("operations", nil, "Operations or presets available to apply")
	cmd.Flags().StringVar(&expect, "expect", "", "Expected solutions, comma separated")
	return cmd
}
