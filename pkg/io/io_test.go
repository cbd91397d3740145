package io

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/lanparty/pkg/graph"
	"github.com/matzehuels/lanparty/pkg/netgraph"
)

func TestReadLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"LF", "kh-tc\nqp-kh\n", []string{"kh-tc", "qp-kh"}},
		{"CRLF", "kh-tc\r\nqp-kh\r\n", []string{"kh-tc", "qp-kh"}},
		{"NoTrailingNewline", "kh-tc\nqp-kh", []string{"kh-tc", "qp-kh"}},
		{"BlankLines", "\nkh-tc\n\n  \nqp-kh\n\n", []string{"kh-tc", "qp-kh"}},
		{"Empty", "", nil},
		{"KeepsMalformed", "kh_tc\n", []string{"kh_tc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReadLines(strings.NewReader(tt.in))
			if err != nil {
				t.Fatalf("ReadLines: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("ReadLines = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImportLinesText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte("kh-tc\r\nqp-kh\r\n"), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := ImportLines(path)
	if err != nil {
		t.Fatalf("ImportLines: %v", err)
	}
	if !slices.Equal(got, []string{"kh-tc", "qp-kh"}) {
		t.Errorf("got %q", got)
	}

	if _, err := ImportLines(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestImportLinesJSON(t *testing.T) {
	g, err := netgraph.Parse([]string{"kh-tc", "tc-kh", "qp-kh"})
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "lan.json")
	if err := graph.WriteGraphFile(g, path); err != nil {
		t.Fatal(err)
	}

	got, err := ImportLines(path)
	if err != nil {
		t.Fatalf("ImportLines: %v", err)
	}
	if !slices.Equal(got, []string{"kh-tc", "kh-qp"}) {
		t.Errorf("got %q", got)
	}
}

func TestImportLinesJSONDropsIsolatedNodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lan.json")
	in := `{"nodes":[{"id":1,"name":"-a"},{"id":2,"name":"bb"},{"id":3,"name":"zz"}],"edges":[{"from":"-a","to":"bb"}]}`
	if err := os.WriteFile(path, []byte(in), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ImportLines(path)
	if err != nil {
		t.Fatalf("ImportLines: %v", err)
	}
	if !slices.Equal(got, []string{"-a-bb"}) {
		t.Errorf("got %q, want only the linked pair", got)
	}
	g, err := netgraph.Parse(got)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := g.Lookup("zz"); ok {
		t.Error("isolated node should not survive the edge-line import")
	}
}

func TestWriteEdges(t *testing.T) {
	g, _ := netgraph.Parse([]string{"bb-aa", "cc-bb", "aa-bb"})

	var buf bytes.Buffer
	if err := WriteEdges(g, &buf); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "bb-aa\nbb-cc\n"; got != want {
		t.Errorf("WriteEdges = %q, want %q", got, want)
	}

	path := filepath.Join(t.TempDir(), "edges.txt")
	if err := ExportEdges(g, path); err != nil {
		t.Fatal(err)
	}
	lines, err := ImportLines(path)
	if err != nil {
		t.Fatal(err)
	}
	back, err := netgraph.Parse(lines)
	if err != nil {
		t.Fatal(err)
	}
	if back.Len() != g.Len() {
		t.Errorf("re-imported %d nodes, want %d", back.Len(), g.Len())
	}
}
