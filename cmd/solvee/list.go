package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/njchilds90/solvee"
	"github.com/njchilds90/solvee/operation"
	"github.com/njchilds90/solvee/strategy"
)

func newOperationsCmd(_ *app) *cobra.Command {
	var preset string
	cmd := &cobra.Command{
		Use:   "operations",
		Short: "List the operation catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kinds := operation.All()
			if preset != "" {
				var err error
				if kinds, err = operation.Preset(preset); err != nil {
					return fmt.Errorf("%w (presets: %v)", err, operation.Presets())
				}
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTITLE\tARGUMENT\tDESCRIPTION")
			for _, op := range solvee.DescribeOperations(kinds) {
				arg := "-"
				if op.Argument {
					arg = "required"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", op.Name, op.Title, arg, op.Help)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&preset, "preset", "", "Only list the operations of a preset")
	return cmd
}

func newStrategiesCmd(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List the strategies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTITLE\tDESCRIPTION")
			for _, s := range strategy.All() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, s.Title, s.Help)
			}
			return tw.Flush()
		},
	}
}
