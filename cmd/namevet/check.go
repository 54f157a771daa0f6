package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/FranksOps/namevet/internal/rdap"
	"github.com/FranksOps/namevet/internal/slug"
)

var checkPrimaryOnly bool

var checkCmd = &cobra.Command{
	Use:   "check <name>",
	Short: "Check domain availability for one name across all configured suffixes",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkPrimaryOnly, "primary", false, "check only the primary suffix")
}

func runCheck(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	name := args[0]
	if !slug.Valid(slug.Normalize(name)) {
		return fmt.Errorf("%q is too short to check", name)
	}

	var results []rdap.DomainResult
	if checkPrimaryOnly {
		if res := a.checker.CheckPrimarySuffix(cmd.Context(), name); res != nil {
			results = append(results, *res)
		}
	} else {
		results = a.checker.CheckAllSuffixes(cmd.Context(), name)
	}
	return writeDomains(cmd.OutOrStdout(), results)
}

func writeDomains(w io.Writer, results []rdap.DomainResult) error {
	if outFormat == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DOMAIN\tSTATUS\tDETAIL")
	for _, r := range results {
		detail := r.Reason
		if detail == "" && r.StatusCode != 0 {
			detail = fmt.Sprintf("HTTP %d", r.StatusCode)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.Domain, status(r.Available), detail)
	}
	return tw.Flush()
}

func status(a rdap.Availability) string {
	switch a {
	case rdap.Available:
		return "free"
	case rdap.Taken:
		return "registered"
	default:
		return "unable to verify"
	}
}
