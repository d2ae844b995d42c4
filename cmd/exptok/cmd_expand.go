package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/DBCDK/expanding"
)

// varsResolver consults explicit --var bindings first and the process
// environment after.
type varsResolver map[string]string

func (v varsResolver) ReadName(r *expanding.Reader) string { return expanding.ReadName(r) }

func (v varsResolver) Lookup(name string) (string, bool) {
	if value, ok := v[name]; ok {
		return value, true
	}
	return os.LookupEnv(name)
}

func parseVars(defs []string) (varsResolver, error) {
	vars := make(varsResolver, len(defs))
	for _, def := range defs {
		name, value, ok := strings.Cut(def, "=")
		if !ok {
			return nil, fmt.Errorf("invalid variable %q, want NAME=VALUE", def)
		}
		vars[name] = value
	}
	return vars, nil
}

func newExpandCmd() *cobra.Command {
	var defs []string

	cmd := &cobra.Command{
		Use:   "expand [text]",
		Short: "Substitute $-expansions in a string or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text string
			if len(args) == 1 {
				text = args[0]
			} else {
				data, err := io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("read stdin: %w", err)
				}
				text = string(data)
			}

			vars, err := parseVars(defs)
			if err != nil {
				return err
			}
			result, err := expanding.Expand(text, vars)
			if err != nil {
				return fmt.Errorf("expand: %w", err)
			}
			fmt.Println(result)
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&defs, "var", nil, "bind NAME=VALUE ahead of the environment")

	return cmd
}
