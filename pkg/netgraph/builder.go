package netgraph

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

const (
	// DefaultNameLength is the length of a computer name in the LAN map format.
	DefaultNameLength = 2

	// DefaultDelimiter separates the two names on an edge line.
	DefaultDelimiter = '-'
)

// MalformedInputError describes an edge line that could not be parsed: a
// name of the wrong length, a non-printable character, a missing delimiter or
// a self-loop such as "aa-aa". It matches [ErrMalformedInput] with errors.Is.
type MalformedInputError struct {
	Line   int    // 1-based line number within the builder's input
	Text   string // The offending line
	Reason string // Why the line was rejected
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("line %d %q: %s", e.Line, e.Text, e.Reason)
}

// Is reports whether target is ErrMalformedInput.
func (e *MalformedInputError) Is(target error) bool { return target == ErrMalformedInput }

// Option configures a [Builder].
type Option func(*config)

type config struct {
	nameLength int
	delimiter  rune
}

// WithNameLength sets the exact length (in characters) every node name must
// have. Values below 1 are ignored.
func WithNameLength(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.nameLength = n
		}
	}
}

// WithDelimiter sets the rune separating the two names on an edge line.
func WithDelimiter(r rune) Option {
	return func(c *config) { c.delimiter = r }
}

// Builder accumulates edges and produces a [Graph].
//
// The builder owns the identity counter of the graph it is building, so
// independent builders assign identical IDs to identical inputs.
type Builder struct {
	cfg    config
	g      *Graph
	nextID NodeID
	line   int
	built  bool
}

// NewBuilder creates an empty builder.
func NewBuilder(opts ...Option) *Builder {
	cfg := config{nameLength: DefaultNameLength, delimiter: DefaultDelimiter}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Builder{cfg: cfg, g: newGraph(), nextID: 1}
}

// AddLine parses one "<name><delimiter><name>" line and adds the edge. The
// delimiter must sit right after the first name, so names may contain it.
// A line linking a name to itself is rejected as malformed, since a node is
// never its own neighbor.
//
// Every call advances the line counter used in error messages, including
// calls that fail.
func (b *Builder) AddLine(line string) error {
	b.line++
	if b.built {
		return ErrFrozen
	}
	left, right, err := b.split(line)
	if err != nil {
		return &MalformedInputError{Line: b.line, Text: line, Reason: err.Error()}
	}
	if left == right {
		return &MalformedInputError{Line: b.line, Text: line, Reason: "self-loop"}
	}
	b.link(left, right)
	return nil
}

// AddEdge adds an undirected edge between two names, creating the nodes on
// first sight. Names are validated against the configured length.
func (b *Builder) AddEdge(a, c string) error {
	return b.AddLine(a + string(b.cfg.delimiter) + c)
}

// AddNode registers an isolated node, or does nothing if the name is known.
// It does not advance the line counter.
func (b *Builder) AddNode(name string) error {
	if b.built {
		return ErrFrozen
	}
	if err := b.checkName(name); err != nil {
		return &MalformedInputError{Line: b.line, Text: name, Reason: err.Error()}
	}
	b.intern(name)
	return nil
}

// Build sorts every neighbor list, verifies adjacency symmetry and freezes the
// graph. Subsequent calls return the same graph.
//
// Build panics if the adjacency is asymmetric, which can only result from a
// bug in the builder itself.
func (b *Builder) Build() *Graph {
	if b.built {
		return b.g
	}
	b.built = true
	sortAdjacency(b.g)
	if err := b.g.Validate(); err != nil {
		panic(fmt.Sprintf("netgraph: invariant violated after build: %v", err))
	}
	return b.g
}

// Parse builds a graph from edge lines. It stops at the first malformed line.
func Parse(lines []string, opts ...Option) (*Graph, error) {
	b := NewBuilder(opts...)
	for _, line := range lines {
		if err := b.AddLine(line); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}

// split cuts line by position: a name of nameLength characters, the
// delimiter, then the second name. Names may themselves contain the delimiter
// ("-a-bb" links "-a" and "bb").
func (b *Builder) split(line string) (string, string, error) {
	if line == "" {
		return "", "", errors.New("empty line")
	}
	runes := []rune(line)
	n := b.cfg.nameLength
	if len(runes) <= n || runes[n] != b.cfg.delimiter {
		return "", "", fmt.Errorf("want %q delimiter after %d characters", b.cfg.delimiter, n)
	}
	left, right := string(runes[:n]), string(runes[n+1:])
	if err := b.checkName(left); err != nil {
		return "", "", fmt.Errorf("left name: %w", err)
	}
	if err := b.checkName(right); err != nil {
		return "", "", fmt.Errorf("right name: %w", err)
	}
	return left, right, nil
}

func (b *Builder) checkName(name string) error {
	if name == "" {
		return errors.New("empty")
	}
	if n := utf8.RuneCountInString(name); n != b.cfg.nameLength {
		return fmt.Errorf("length %d, want %d", n, b.cfg.nameLength)
	}
	for _, r := range name {
		if r == utf8.RuneError || r <= ' ' || r == 0x7f {
			return fmt.Errorf("non-printable character %q", r)
		}
	}
	return nil
}

// link creates both endpoints if needed and appends each to the other's
// neighbor list.
func (b *Builder) link(left, right string) {
	a := b.intern(left)
	c := b.intern(right)
	b.g.nodes[a.index()].neighbors = append(b.g.nodes[a.index()].neighbors, c)
	b.g.nodes[c.index()].neighbors = append(b.g.nodes[c.index()].neighbors, a)
	b.g.edges++
}

// intern returns the ID for name, registering a new node on first sight.
func (b *Builder) intern(name string) NodeID {
	if id, ok := b.g.byName[name]; ok {
		return id
	}
	id := b.nextID
	b.nextID++
	b.g.nodes = append(b.g.nodes, Node{Name: name, ID: id})
	b.g.byName[name] = id
	return id
}
