package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/FranksOps/namevet/internal/convergence"
	"github.com/FranksOps/namevet/internal/report"
	"github.com/FranksOps/namevet/internal/storage"
)

var validateFile string

var validateCmd = &cobra.Command{
	Use:   "validate [name...]",
	Short: "Validate and rank a batch of names",
	Long: "Checks the primary domain of every name, then, for names whose primary domain\n" +
		"is free, the other configured suffixes and the business directory. Prints the\n" +
		"ranked result without asking for replacement names.",
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateFile, "file", "", "read names from a file (- for stdin)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	names, err := readNames(args, validateFile, cmd.InOrStdin())
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("no names given")
	}
	return runPolicy(cmd, names, nil, -1)
}

// runPolicy builds the app, runs the convergence loop and writes the report.
func runPolicy(cmd *cobra.Command, names []string, gen convergence.Generator, maxEscalations int) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	policy := &convergence.Policy{
		Validator:      a.validator,
		Generator:      gen,
		MaxEscalations: maxEscalations,
		Logger:         logger,
	}
	rep, err := policy.Run(ctx, names)
	if err != nil {
		return err
	}

	if err := export(ctx, rep); err != nil {
		// The report is still worth printing.
		logger.Error("export failed", "err", err)
	}
	return writeReport(cmd.OutOrStdout(), report.Summarize(rep))
}

func export(ctx context.Context, rep *convergence.Report) error {
	backend, err := openBackend(context.WithoutCancel(ctx), cfg.Storage)
	if err != nil || backend == nil {
		return err
	}
	defer backend.Close()

	records := storage.FromReport(rep)
	if err := storage.SaveAll(context.WithoutCancel(ctx), backend, records); err != nil {
		return err
	}
	logger.Info("run exported", "run", rep.ID, "backend", cfg.Storage.Backend, "records", len(records))
	return nil
}

func writeReport(w io.Writer, s report.Summary) error {
	switch strings.ToLower(outFormat) {
	case "json":
		return report.WriteJSON(w, s)
	case "html":
		return report.WriteHTML(w, s)
	default:
		return report.WriteText(w, s)
	}
}
