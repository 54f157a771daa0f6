package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/FranksOps/namevet/internal/similarity"
)

var (
	searchLocality    string
	searchSimilarOnly bool
)

var searchCmd = &cobra.Command{
	Use:   "search <name>",
	Short: "Search the business directory for a name",
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().StringVar(&searchLocality, "locality", "", "restrict the search to a town or region")
	searchCmd.Flags().BoolVar(&searchSimilarOnly, "similar", false, "only show businesses judged similar to the name")
}

func runSearch(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	name := args[0]
	matches := a.directory.Search(cmd.Context(), name, searchLocality)
	if searchSimilarOnly {
		matches = similarity.Filter(name, matches)
	}

	w := cmd.OutOrStdout()
	if outFormat == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	}

	if len(matches) == 0 {
		fmt.Fprintln(w, "No businesses found.")
		return nil
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIMILAR\tRATING\tADDRESS")
	for _, m := range matches {
		rating := "-"
		if m.Rating != nil {
			rating = fmt.Sprintf("%.1f (%d)", *m.Rating, m.RatingCount)
		}
		similar := "no"
		if similarity.IsSimilar(name, m.Name) {
			similar = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Name, similar, rating, m.Address)
	}
	return tw.Flush()
}
