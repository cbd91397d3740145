package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/lanparty/pkg/netgraph"
)

func mustParse(t *testing.T, lines ...string) *netgraph.Graph {
	t.Helper()
	g, err := netgraph.Parse(lines)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestMarshalGraph(t *testing.T) {
	tests := []struct {
		name      string
		lines     []string
		wantNodes int
		wantEdges int
		check     func(t *testing.T, g Graph)
	}{
		{
			name:      "Empty",
			wantNodes: 0,
			wantEdges: 0,
		},
		{
			name:      "Triangle",
			lines:     []string{"aa-bb", "bb-cc", "cc-aa"},
			wantNodes: 3,
			wantEdges: 3,
			check: func(t *testing.T, g Graph) {
				want := []Edge{{"aa", "bb"}, {"aa", "cc"}, {"bb", "cc"}}
				if !slices.Equal(g.Edges, want) {
					t.Errorf("edges = %v, want %v", g.Edges, want)
				}
			},
		},
		{
			name:      "DuplicatesCollapsed",
			lines:     []string{"aa-bb", "bb-aa", "aa-bb"},
			wantNodes: 2,
			wantEdges: 1,
			check: func(t *testing.T, g Graph) {
				if g.Nodes[0].Degree != 3 {
					t.Errorf("degree = %d, want 3 (multiplicity kept)", g.Nodes[0].Degree)
				}
			},
		},
		{
			name:      "IDsInFirstSeenOrder",
			lines:     []string{"zz-aa", "mm-zz"},
			wantNodes: 3,
			wantEdges: 2,
			check: func(t *testing.T, g Graph) {
				var names []string
				for _, n := range g.Nodes {
					names = append(names, n.Name)
				}
				if !slices.Equal(names, []string{"zz", "aa", "mm"}) {
					t.Errorf("node order = %v", names)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := MarshalGraph(mustParse(t, tt.lines...))
			if err != nil {
				t.Fatalf("MarshalGraph: %v", err)
			}

			var result Graph
			if err := json.Unmarshal(data, &result); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := len(result.Nodes); got != tt.wantNodes {
				t.Errorf("nodes = %d, want %d", got, tt.wantNodes)
			}
			if got := len(result.Edges); got != tt.wantEdges {
				t.Errorf("edges = %d, want %d", got, tt.wantEdges)
			}
			if tt.check != nil {
				tt.check(t, result)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	g := mustParse(t, "kh-tc", "qp-kh", "de-cg", "ka-co", "yn-aq", "qp-ub", "cg-tb", "vc-aq")

	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		t.Fatal(err)
	}
	back, err := ReadGraph(&buf)
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}

	if back.Len() != g.Len() || back.EdgeCount() != g.EdgeCount() {
		t.Fatalf("size %d/%d, want %d/%d", back.Len(), back.EdgeCount(), g.Len(), g.EdgeCount())
	}
	for _, n := range g.Nodes() {
		m, ok := back.Lookup(n.Name)
		if !ok {
			t.Fatalf("node %s missing", n.Name)
		}
		if m.ID != n.ID {
			t.Errorf("%s: id %d, want %d", n.Name, m.ID, n.ID)
		}
		if !slices.Equal(m.Neighbors(), n.Neighbors()) {
			t.Errorf("%s: neighbors %v, want %v", n.Name, m.Neighbors(), n.Neighbors())
		}
	}
}

func TestToNetgraph(t *testing.T) {
	b := netgraph.NewBuilder()
	for _, line := range []string{"aa-bb", "bb-aa", "bb-cc", "-a-cc"} {
		if err := b.AddLine(line); err != nil {
			t.Fatal(err)
		}
	}
	if err := b.AddNode("zz"); err != nil {
		t.Fatal(err)
	}
	g := b.Build()

	wire := FromNetgraph(g)
	if len(wire.Edges) != 3 {
		t.Fatalf("wire edges = %d, want duplicates collapsed to 3", len(wire.Edges))
	}

	back, err := ToNetgraph(wire)
	if err != nil {
		t.Fatalf("ToNetgraph: %v", err)
	}
	if back.EdgeCount() != 3 {
		t.Errorf("edges = %d, want 3", back.EdgeCount())
	}
	aa, _ := back.Lookup("aa")
	bb, _ := back.Lookup("bb")
	if got := back.Neighbors(aa.ID); !slices.Equal(got, []netgraph.NodeID{bb.ID}) {
		t.Errorf("aa neighbors = %v, want a single bb", got)
	}
	if _, ok := back.Lookup("-a"); !ok {
		t.Error("name containing the delimiter lost")
	}
	zz, ok := back.Lookup("zz")
	if !ok {
		t.Fatal("isolated node lost")
	}
	if zz.ID != 5 || zz.Degree() != 0 {
		t.Errorf("zz: id %d degree %d, want 5 and 0", zz.ID, zz.Degree())
	}
}

func TestReadGraphNameLength(t *testing.T) {
	in := `{"nodes":[{"id":1,"name":"abc"},{"id":2,"name":"def"}],"edges":[{"from":"abc","to":"def"}]}`
	g, err := ReadGraph(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	if g.Len() != 2 || g.EdgeCount() != 1 {
		t.Errorf("got %d nodes %d edges", g.Len(), g.EdgeCount())
	}
}

func TestReadGraphErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"InvalidJSON", `{nodes`},
		{"MixedNameLength", `{"nodes":[{"id":1,"name":"aa"},{"id":2,"name":"bbb"}]}`},
		{"SelfLoop", `{"nodes":[{"id":1,"name":"aa"}],"edges":[{"from":"aa","to":"aa"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadGraph(strings.NewReader(tt.in)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGraphFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lan.json")
	g := mustParse(t, "aa-bb", "bb-cc")

	if err := WriteGraphFile(g, path); err != nil {
		t.Fatalf("WriteGraphFile: %v", err)
	}
	back, err := ReadGraphFile(path)
	if err != nil {
		t.Fatalf("ReadGraphFile: %v", err)
	}
	if back.Len() != 3 {
		t.Errorf("nodes = %d, want 3", back.Len())
	}

	if _, err := ReadGraphFile(filepath.Join(t.TempDir(), "missing.json")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("missing file err = %v", err)
	}
}

func TestReport(t *testing.T) {
	r := Report{
		RunID:     "run-1",
		Triangles: 7,
		Filter:    "t",
		Clique:    []string{"co", "de", "ka", "ta"},
		Password:  "co,de,ka,ta",
		Strategy:  "exact",
		Stats:     Stats{Nodes: 16, Edges: 32},
	}
	data, err := MarshalReport(r)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"run_id"`, `"triangles":7`, `"password":"co,de,ka,ta"`, `"build_ms"`} {
		if !bytes.Contains(data, []byte(key)) {
			t.Errorf("report JSON missing %s: %s", key, data)
		}
	}
	if bytes.Contains(data, []byte(`"cached"`)) {
		t.Error("cached should be omitted when false")
	}

	back, err := UnmarshalReport(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.Password != r.Password || back.Triangles != r.Triangles || !slices.Equal(back.Clique, r.Clique) {
		t.Errorf("round trip = %+v", back)
	}
}
