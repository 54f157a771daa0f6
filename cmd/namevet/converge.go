package main

import (
	"fmt"

	"github.com/mattn/go-shellwords"
	"github.com/spf13/cobra"

	"github.com/FranksOps/namevet/internal/convergence"
)

var (
	convergeFile      string
	convergeReserve   string
	convergeBatch     int
	convergeGenerator string
)

var convergeCmd = &cobra.Command{
	Use:   "converge [name...]",
	Short: "Validate names, asking for one fresh batch if none survive",
	Long: "Runs validate and, when no name has a free primary domain, requests one new\n" +
		"batch from a generator, passing the discarded names, and reports both rounds\n" +
		"ranked together. The generator is either a reserve list (--reserve) or an\n" +
		"external command (--generator) that reads discarded names on stdin and prints\n" +
		"a SUGGESTIONS: line or a plain list.",
	RunE: runConverge,
}

func init() {
	convergeCmd.Flags().StringVar(&convergeFile, "file", "", "read names from a file (- for stdin)")
	convergeCmd.Flags().StringVar(&convergeReserve, "reserve", "", "file of reserve names to draw replacement batches from")
	convergeCmd.Flags().IntVar(&convergeBatch, "batch", 10, "names per replacement batch from --reserve")
	convergeCmd.Flags().StringVar(&convergeGenerator, "generator", "", "command that prints replacement names")
	convergeCmd.MarkFlagsMutuallyExclusive("reserve", "generator")
}

func runConverge(cmd *cobra.Command, args []string) error {
	names, err := readNames(args, convergeFile, cmd.InOrStdin())
	if err != nil {
		return err
	}

	var gen convergence.Generator
	switch {
	case convergeReserve != "":
		reserve, err := readNames(nil, convergeReserve, cmd.InOrStdin())
		if err != nil {
			return err
		}
		gen = &convergence.ListGenerator{Names: reserve, Batch: convergeBatch}
	case convergeGenerator != "":
		argv, err := shellwords.Parse(convergeGenerator)
		if err != nil || len(argv) == 0 {
			return fmt.Errorf("invalid --generator %q", convergeGenerator)
		}
		gen = &convergence.CommandGenerator{Path: argv[0], Args: argv[1:]}
	}

	if len(names) == 0 && gen == nil {
		return fmt.Errorf("no names given and no generator configured")
	}
	return runPolicy(cmd, names, gen, cfg.Validate.MaxEscalations)
}
