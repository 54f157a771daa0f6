package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/FranksOps/namevet/internal/suggest"
)

var suggestValidate bool

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Extract names from generator output on stdin",
	Long: "Reads free-form text (for example a language model reply) from stdin and\n" +
		"prints the names on its SUGGESTIONS:/SUGERENCIAS: line. With --validate the\n" +
		"names are validated instead.",
	Args: cobra.NoArgs,
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().BoolVar(&suggestValidate, "validate", false, "validate the extracted names")
}

func runSuggest(cmd *cobra.Command, _ []string) error {
	text, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	names := suggest.Parse(string(text))
	if len(names) == 0 {
		return fmt.Errorf("no suggestions line found")
	}
	if suggestValidate {
		return runPolicy(cmd, names, nil, -1)
	}

	w := cmd.OutOrStdout()
	if outFormat == "json" {
		return json.NewEncoder(w).Encode(names)
	}
	for _, n := range names {
		fmt.Fprintln(w, n)
	}
	return nil
}
