package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/DBCDK/expanding/conf"
)

func newLoadCmd() *cobra.Command {
	var outputFormat string
	var strict bool

	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Parse an INI file and print it as JSON or YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []conf.Option
			if strict {
				opts = append(opts, conf.WithStrict())
			}
			doc, err := conf.Load(args[0], opts...)
			if err != nil {
				return err
			}
			log.Infof("loaded %s: %d sections", args[0], len(doc.Sections()))

			switch outputFormat {
			case "json":
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(doc.Map()); err != nil {
					return fmt.Errorf("encode: %w", err)
				}
			case "yaml":
				data, err := yaml.Marshal(doc.Map())
				if err != nil {
					return fmt.Errorf("encode: %w", err)
				}
				if _, err := os.Stdout.Write(data); err != nil {
					return fmt.Errorf("write: %w", err)
				}
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "json", "output format (json or yaml)")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat duplicate keys as errors")

	return cmd
}
