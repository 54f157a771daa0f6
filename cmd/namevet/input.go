package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// readNames collects names from args and, when path is set, from a file
// ("-" is stdin). File entries may be one per line or comma separated; lines
// starting with '#' are ignored.
func readNames(args []string, path string, stdin io.Reader) ([]string, error) {
	names := append([]string(nil), args...)
	if path == "" {
		return names, nil
	}

	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("read names: %w", err)
		}
		defer f.Close()
		r = f
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		for _, n := range strings.Split(line, ",") {
			if n = strings.TrimSpace(n); n != "" {
				names = append(names, n)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read names: %w", err)
	}
	return names, nil
}
