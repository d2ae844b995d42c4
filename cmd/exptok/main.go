// exptok inspects the variable-expanding tokenizer: it dumps token streams,
// expands $-syntax, evaluates integer expressions and loads INI files.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

var log = commonlog.GetLogger("exptok")

func main() {
	var verbosity int

	rootCmd := &cobra.Command{
		Use:   "exptok",
		Short: "Tokenize and expand configuration text",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			commonlog.Configure(verbosity, nil)
		},
	}
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity")

	rootCmd.AddCommand(newTokensCmd())
	rootCmd.AddCommand(newExpandCmd())
	rootCmd.AddCommand(newEvalCmd())
	rootCmd.AddCommand(newLoadCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
