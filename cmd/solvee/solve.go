package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/njchilds90/solvee"
	"github.com/njchilds90/solvee/internal/logging"
)

var errMismatch = errors.New("solutions do not match the expected ones")

func newSolveCmd(a *app) *cobra.Command {
	var expect string
	cmd := &cobra.Command{
		Use:   "solve <equation>",
		Short: "Expand an equation with a strategy",
		Example: `  solvee solve "2x^2 - 4x - 6 = 0" --expect "-1, 3"
  solvee solve "x^4 - 5x^2 + 4 = 0" --pace 500ms --log-level debug
  solvee solve "sin(2x) = 1/2" --strategy trigonometrical --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.session(expect)
			if err != nil {
				return err
			}
			if err := s.SetEquationText(args[0]); err != nil {
				return err
			}
			if err := s.Expand(cmd.Context(), a.cfg.Strategy); err != nil {
				return err
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
	cmd.Flags().String("strategy", "polynomial", "Strategy (polynomial, trigonometrical)")
	cmd.Flags().Duration("pace", 0, "Wait between steps")
	cmd.Flags().String("format", "text", "Output format (text, json)")
	cmd.Flags().String("hints", "", "YAML file with additional hint rules")
	cmd.Flags().StringSlice("operations", nil, "Operations or presets available to apply")
	cmd.Flags().StringVar(&expect, "expect", "", "Expected solutions, comma separated")
	return cmd
}

func (a *app) session(expect string) (*solvee.Session, error) {
	rules, err := a.rules()
	if err != nil {
		return nil, err
	}
	opts := []solvee.Option{
		solvee.WithLogger(a.log),
		solvee.WithPace(a.cfg.Pace),
		solvee.WithOperations(a.cfg.Operations...),
		solvee.WithRules(rules),
	}
	if expect != "" {
		opts = append(opts, solvee.WithExpected(expect))
	}
	return solvee.New(opts...)
}

func (a *app) report(w io.Writer, s *solvee.Session) error {
	if a.cfg.Format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s.Snapshot())
	}
	fmt.Fprint(w, s.Render())
	v := s.Snapshot()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Solutions: %s\n", highlight(w, braces(v.Solutions)))
	for _, h := range v.Hints {
		fmt.Fprintf(w, "Hint: %s\n", h)
	}
	if v.Valid != nil {
		verdict := "no"
		if *v.Valid {
			verdict = "yes"
		}
		fmt.Fprintf(w, "Matches %s: %s\n", braces(v.Expected), verdict)
	}
	return nil
}

func braces(values []string) string {
	return "{" + strings.Join(values, ", ") + "}"
}

// highlight renders text bold green on a terminal.
func highlight(w io.Writer, text string) string {
	if !logging.IsTerminal(w) {
		return text
	}
	return "\x1b[1;32m" + text + "\x1b[0m"
}
