package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/matzehuels/lanparty/pkg/config"
	lperrors "github.com/matzehuels/lanparty/pkg/errors"
	"github.com/matzehuels/lanparty/pkg/graph"
)

const samplePath = "../../pkg/clique/testdata/sample.txt"

// testEnv isolates config and cache directories per test.
type testEnv struct {
	configHome string
	cacheHome  string
	stdin      io.Reader
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{configHome: t.TempDir(), cacheHome: t.TempDir()}
	t.Setenv("XDG_CONFIG_HOME", env.configHome)
	t.Setenv("XDG_CACHE_HOME", env.cacheHome)
	return env
}

func (e *testEnv) writeConfig(t *testing.T, body string) {
	t.Helper()
	dir := filepath.Join(e.configHome, config.AppName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	if e.stdin != nil {
		root.SetIn(e.stdin)
	}
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	env := newTestEnv(t)

	t.Run("text", func(t *testing.T) {
		out, err := env.run(t, "analyze", "--no-cache", samplePath)
		if err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"triangles", "7", "aq,cg,yn", "16 nodes", "32 edges", "fresh"} {
			if !strings.Contains(out, want) {
				t.Errorf("output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("json exact", func(t *testing.T) {
		out, err := env.run(t, "analyze", "--json", "--strategy", "exact", samplePath)
		if err != nil {
			t.Fatal(err)
		}
		var rep graph.Report
		if err := json.Unmarshal([]byte(out), &rep); err != nil {
			t.Fatalf("invalid JSON: %v\n%s", err, out)
		}
		if rep.Triangles != 7 || rep.Password != "co,de,ka,ta" || rep.Strategy != "exact" {
			t.Errorf("report = %+v", rep)
		}
	})

	t.Run("cached second run", func(t *testing.T) {
		if _, err := env.run(t, "analyze", samplePath); err != nil {
			t.Fatal(err)
		}
		out, err := env.run(t, "analyze", samplePath)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(out, "cached") {
			t.Errorf("second run should report a cache hit:\n%s", out)
		}
	})

	t.Run("stdin", func(t *testing.T) {
		data, err := os.ReadFile(samplePath)
		if err != nil {
			t.Fatal(err)
		}
		stdinEnv := *env
		stdinEnv.stdin = bytes.NewReader(data)
		out, err := stdinEnv.run(t, "triangles", "--no-cache", "-")
		if err != nil {
			t.Fatal(err)
		}
		if out != "7\n" {
			t.Errorf("output = %q, want 7", out)
		}
	})
}

func TestAnalyzeCommandErrors(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	malformed := filepath.Join(dir, "bad.txt")
	if err := os.WriteFile(malformed, []byte("kh-tc\nkh+tc\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	empty := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(empty, []byte("\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		code lperrors.Code
	}{
		{"missing file", []string{"analyze", filepath.Join(dir, "nope.txt")}, lperrors.ErrCodeFileNotFound},
		{"malformed", []string{"analyze", "--no-cache", malformed}, lperrors.ErrCodeMalformedInput},
		{"bad strategy", []string{"clique", "--strategy", "fast", samplePath}, lperrors.ErrCodeInvalidStrategy},
		{"long prefix", []string{"triangles", "--prefix", "abc", samplePath}, lperrors.ErrCodeInvalidInput},
		{"missing config", []string{"analyze", "--config", filepath.Join(dir, "none.toml"), samplePath}, lperrors.ErrCodeFileNotFound},
		{"bad format", []string{"render", "--format", "gif", samplePath}, lperrors.ErrCodeInvalidFormat},
		{"explore empty", []string{"explore", "--no-cache", empty}, lperrors.ErrCodeEmptyGraph},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.run(t, tt.args...)
			if !lperrors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestTrianglesCommand(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"default prefix", []string{"triangles", samplePath}, "7\n"},
		{"all", []string{"triangles", "--all", samplePath}, "12\n"},
		{"prefix k", []string{"triangles", "-p", "k", samplePath}, "4\n"},
		{
			"list",
			[]string{"triangles", "--list", samplePath},
			"co,de,ta\nco,ka,ta\nde,ka,ta\nqp,td,wh\ntb,vc,wq\ntc,td,wh\ntd,wh,yn\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := env.run(t, tt.args...)
			if err != nil {
				t.Fatal(err)
			}
			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestCliqueCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "clique", samplePath)
	if err != nil {
		t.Fatal(err)
	}
	if out != "aq,cg,yn\n" {
		t.Errorf("greedy output = %q", out)
	}

	out, err = env.run(t, "password", "--strategy", "exact", "--workers", "2", samplePath)
	if err != nil {
		t.Fatal(err)
	}
	if out != "co,de,ka,ta\n" {
		t.Errorf("exact output = %q", out)
	}
}

func TestConfigFile(t *testing.T) {
	env := newTestEnv(t)
	env.writeConfig(t, `
[analysis]
prefix = "k"
strategy = "exact"

[cache]
backend = "none"
`)

	out, err := env.run(t, "triangles", samplePath)
	if err != nil {
		t.Fatal(err)
	}
	if out != "4\n" {
		t.Errorf("config prefix: output = %q, want 4", out)
	}

	out, err = env.run(t, "triangles", "--prefix", "t", samplePath)
	if err != nil {
		t.Fatal(err)
	}
	if out != "7\n" {
		t.Errorf("flag should override config: output = %q, want 7", out)
	}

	out, err = env.run(t, "clique", samplePath)
	if err != nil {
		t.Fatal(err)
	}
	if out != "co,de,ka,ta\n" {
		t.Errorf("config strategy: output = %q", out)
	}

	out, err = env.run(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "disabled") {
		t.Errorf("cache clear with backend none: %q", out)
	}
}

func TestRenderCommand(t *testing.T) {
	env := newTestEnv(t)

	t.Run("dot to stdout", func(t *testing.T) {
		out, err := env.run(t, "render", "--strategy", "exact", samplePath)
		if err != nil {
			t.Fatal(err)
		}
		if !strings.HasPrefix(out, "graph G {") {
			t.Errorf("expected DOT, got %q", out[:min(len(out), 40)])
		}
		if !strings.Contains(out, "#d32f2f") {
			t.Error("clique should be highlighted")
		}
	})

	t.Run("no highlight", func(t *testing.T) {
		out, err := env.run(t, "render", "--no-highlight", samplePath)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(out, "#d32f2f") {
			t.Error("--no-highlight should draw plain nodes")
		}
	})

	t.Run("edges to file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "lan.txt")
		out, err := env.run(t, "render", "--format", "edges", "-o", path, samplePath)
		if err != nil {
			t.Fatal(err)
		}
		if out != "" {
			t.Errorf("nothing should go to stdout, got %q", out)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if n := len(strings.Fields(string(data))); n != 32 {
			t.Errorf("wrote %d edges, want 32", n)
		}
	})

	t.Run("bad engine", func(t *testing.T) {
		if _, err := env.run(t, "render", "--engine", "twopi", samplePath); err == nil {
			t.Error("expected error for unknown engine")
		}
	})
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		output, input, format string
		want                  string
	}{
		{"", "lan.txt", "dot", ""},
		{"", "lan.txt", "json", ""},
		{"", "lan.txt", "svg", "lan.svg"},
		{"", "dir/lan.txt", "png", "dir/lan.png"},
		{"", "-", "pdf", "lanparty.pdf"},
		{"out.svg", "lan.txt", "svg", "out.svg"},
		{"-", "lan.txt", "svg", "-"},
	}

	for _, tt := range tests {
		if got := outputPath(tt.output, tt.input, tt.format); got != tt.want {
			t.Errorf("outputPath(%q, %q, %q) = %q, want %q", tt.output, tt.input, tt.format, got, tt.want)
		}
	}
}

func TestAnalysisFlagsOptions(t *testing.T) {
	cfg := config.Default().Analysis
	cfg.Prefix = "k"
	cfg.Workers = 4

	cmd := &cobra.Command{}
	var flags analysisFlags
	flags.register(cmd)
	if err := cmd.Flags().Parse([]string{"--strategy", "exact"}); err != nil {
		t.Fatal(err)
	}

	opts := flags.options(cmd, cfg)
	if opts.Prefix != "k" {
		t.Errorf("Prefix = %q, want config value k", opts.Prefix)
	}
	if opts.Workers != 4 {
		t.Errorf("Workers = %d, want config value 4", opts.Workers)
	}
	if opts.Strategy != "exact" {
		t.Errorf("Strategy = %q, want flag value exact", opts.Strategy)
	}
}

func TestCacheCommands(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(env.cacheHome, config.AppName) + "\n"; out != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}

	if _, err := env.run(t, "analyze", samplePath); err != nil {
		t.Fatal(err)
	}
	out, err = env.run(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared 1 cached entries") {
		t.Errorf("cache clear output = %q", out)
	}
}

func TestCacheDirFromConfig(t *testing.T) {
	c := New(io.Discard, LogInfo)
	c.Config.Cache.Dir = "/srv/lanparty-cache"
	dir, err := c.cacheDir()
	if err != nil {
		t.Fatal(err)
	}
	if dir != "/srv/lanparty-cache" {
		t.Errorf("cacheDir() = %q", dir)
	}
}

func TestCompletionCommand(t *testing.T) {
	env := newTestEnv(t)
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			out, err := env.run(t, "completion", shell)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out, "lanparty") {
				t.Errorf("%s completion does not mention lanparty", shell)
			}
		})
	}
	if _, err := env.run(t, "completion", "tcsh"); err == nil {
		t.Error("expected error for unsupported shell")
	}
}
