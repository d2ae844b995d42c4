package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DBCDK/expanding"
)

func newEvalCmd() *cobra.Command {
	var defs []string

	cmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate an integer expression",
		Long: `Evaluate an integer expression with + - * / %, parentheses, unary minus,
the binary minimum '<' and maximum '>', and $-variable references.

Examples:
  exptok eval '0x10 + 2 * 3'
  exptok eval --var N=4 '($N > 8) * 100'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			vars, err := parseVars(defs)
			if err != nil {
				return err
			}
			result, err := expanding.Expand("$("+strings.Join(args, " ")+")", vars)
			if err != nil {
				return fmt.Errorf("eval: %w", err)
			}
			fmt.Println(result)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&defs, "var", nil, "bind NAME=VALUE ahead of the environment")

	return cmd
}
