package convergence

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/FranksOps/namevet/internal/slug"
	"github.com/FranksOps/namevet/internal/suggest"
)

// ListGenerator hands out names from a fixed reserve, skipping any already
// discarded. Each call returns at most Batch names (all remaining when Batch
// is zero) and consumes them.
type ListGenerator struct {
	Names []string
	Batch int
}

func (g *ListGenerator) Generate(_ context.Context, discarded []string) ([]string, error) {
	skip := make(map[string]struct{}, len(discarded))
	for _, d := range discarded {
		skip[slug.Key(d)] = struct{}{}
	}

	var out []string
	rest := g.Names[:0:0]
	for _, n := range g.Names {
		_, dup := skip[slug.Key(n)]
		switch {
		case dup:
		case g.Batch > 0 && len(out) == g.Batch:
			rest = append(rest, n)
		default:
			out = append(out, n)
		}
	}
	g.Names = rest
	return out, nil
}

// CommandGenerator runs an external program to produce names. The discarded
// names are written to its stdin, one per line, and its stdout is parsed for a
// suggestions line. Output without one is read as a plain comma-separated or
// one-per-line list.
type CommandGenerator struct {
	Path string
	Args []string
}

func (g *CommandGenerator) Generate(ctx context.Context, discarded []string) ([]string, error) {
	if g.Path == "" {
		return nil, fmt.Errorf("convergence: generator command is empty")
	}

	cmd := exec.CommandContext(ctx, g.Path, g.Args...)
	cmd.Stdin = strings.NewReader(strings.Join(discarded, "\n"))
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("convergence: run %s: %w: %s", g.Path, err, strings.TrimSpace(stderr.String()))
	}

	out := stdout.String()
	if names := suggest.Parse(out); names != nil {
		return names, nil
	}
	return suggest.ParseList(strings.ReplaceAll(out, "\n", ",")), nil
}
