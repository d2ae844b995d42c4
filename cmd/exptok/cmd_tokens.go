package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/DBCDK/expanding"
)

func newTokensCmd() *cobra.Command {
	var full bool
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Dump the token stream of a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			start := time.Now()

			var tz *expanding.Tokenizer
			var err error
			if full {
				tz, err = expanding.OpenFull(args[0])
			} else {
				tz, err = expanding.OpenINI(args[0])
			}
			if err != nil {
				return err
			}

			var tokens []expanding.Token
			for {
				tok, err := tz.Next()
				if err != nil {
					return fmt.Errorf("tokenize: %w", err)
				}
				tokens = append(tokens, tok)
				if tok.Type == expanding.TokenEOF {
					break
				}
			}
			log.Infof("tokenized %s: %d tokens in %s", args[0], len(tokens), time.Since(start))

			switch outputFormat {
			case "text":
				for _, tok := range tokens {
					fmt.Println(tok)
				}
			case "json":
				type jsonToken struct {
					Type    string `json:"type"`
					Content string `json:"content"`
					At      string `json:"at"`
				}
				out := make([]jsonToken, 0, len(tokens))
				for _, tok := range tokens {
					out = append(out, jsonToken{tok.Type.String(), tok.Content, tok.At.String()})
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(out); err != nil {
					return fmt.Errorf("encode: %w", err)
				}
			default:
				return fmt.Errorf("unknown format: %s", outputFormat)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "enable every one-character token")
	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text or json)")

	return cmd
}
