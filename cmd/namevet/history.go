package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/FranksOps/namevet/internal/storage"
)

var (
	historyRun      string
	historyName     string
	historyMinScore int
	historySince    time.Duration
	historyLimit    int
	historyOffset   int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List exported validation results",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyRun, "run", "", "only records from this run id")
	historyCmd.Flags().StringVar(&historyName, "name", "", "only records for this name (any spelling)")
	historyCmd.Flags().IntVar(&historyMinScore, "min-score", 0, "only records scoring at least this much")
	historyCmd.Flags().DurationVar(&historySince, "since", 0, "only records newer than this, e.g. 24h")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "maximum records to show")
	historyCmd.Flags().IntVar(&historyOffset, "offset", 0, "records to skip")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	backend, err := openBackend(cmd.Context(), cfg.Storage)
	if err != nil {
		return err
	}
	if backend == nil {
		return fmt.Errorf("no storage backend configured (set storage.backend)")
	}
	defer backend.Close()

	filter := storage.Filter{
		Name:   historyName,
		Limit:  historyLimit,
		Offset: historyOffset,
	}
	if historyRun != "" {
		id, err := uuid.Parse(historyRun)
		if err != nil {
			return fmt.Errorf("invalid --run: %w", err)
		}
		filter.RunID = id
	}
	if cmd.Flags().Changed("min-score") {
		filter.MinScore = &historyMinScore
	}
	if historySince > 0 {
		since := time.Now().Add(-historySince)
		filter.Since = &since
	}

	records, err := backend.Query(cmd.Context(), filter)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if outFormat == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tRUN\tSCORE\tNAME\tPRIMARY\tFREE\tSIMILAR")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\t%d\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.RunID.String()[:8],
			r.Score,
			r.Name,
			r.Primary,
			strings.Join(r.FreeSuffixes, ","),
			r.SimilarCount,
		)
	}
	return tw.Flush()
}
