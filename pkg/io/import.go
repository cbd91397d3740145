package io

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/lanparty/pkg/graph"
)

// StdinPath makes [ImportLines] read from standard input.
const StdinPath = "-"

// maxLineSize bounds a single input line. Valid lines are a few bytes; the
// limit only keeps a binary file from exhausting memory.
const maxLineSize = 1 << 20

// ReadLines reads newline-separated lines from r. A trailing "\r" is removed
// from each line and blank lines are skipped.
//
// ReadLines does not close r.
func ReadLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return lines, nil
}

// ImportLines reads the LAN map at path. Paths ending in ".json" are decoded
// as a graph export; "-" reads standard input; anything else is read as text.
func ImportLines(path string) ([]string, error) {
	if path == StdinPath {
		return ReadLines(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		g, err := graph.ReadGraph(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return EdgeLines(g), nil
	}
	return ReadLines(f)
}
