package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/lanparty/pkg/graph"
	"github.com/matzehuels/lanparty/pkg/observability"
	"github.com/matzehuels/lanparty/pkg/pipeline"
)

func sampleBody(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../pkg/clique/testdata/sample.txt")
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	logger := log.New(io.Discard)
	s := New(pipeline.NewRunner(nil, nil, logger), logger, pipeline.Options{Prefix: "t"})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "text/plain", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decode[map[string]string](t, resp)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("X-Request-ID %q is not a UUID", resp.Header.Get(RequestIDHeader))
	}
}

func TestRequestIDPropagation(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name     string
		incoming string
		keep     bool
	}{
		{"valid id is kept", "0b3c8f0e-4a53-4c1e-9d6e-3f2d4b8e7a10", true},
		{"invalid id is replaced", "not-a-uuid", false},
		{"missing id is assigned", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
			if tt.incoming != "" {
				req.Header.Set(RequestIDHeader, tt.incoming)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()

			got := resp.Header.Get(RequestIDHeader)
			if tt.keep && got != tt.incoming {
				t.Errorf("X-Request-ID = %q, want %q", got, tt.incoming)
			}
			if !tt.keep {
				if got == tt.incoming {
					t.Errorf("X-Request-ID %q should have been replaced", got)
				}
				if _, err := uuid.Parse(got); err != nil {
					t.Errorf("X-Request-ID %q is not a UUID", got)
				}
			}
		})
	}
}

func TestAnalyze(t *testing.T) {
	_, ts := newTestServer(t)
	body := sampleBody(t)

	tests := []struct {
		name      string
		query     string
		triangles int
		password  string
		filter    string
	}{
		{"defaults", "", 7, "aq,cg,yn", "t"},
		{"exact", "?strategy=exact", 7, "co,de,ka,ta", "t"},
		{"all", "?all=true", 12, "aq,cg,yn", ""},
		{"prefix", "?prefix=k", 4, "aq,cg,yn", "k"},
		{"workers", "?workers=3", 7, "aq,cg,yn", "t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/analyze"+tt.query, body)
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q", ct)
			}
			rep := decode[graph.Report](t, resp)
			if rep.Triangles != tt.triangles {
				t.Errorf("triangles = %d, want %d", rep.Triangles, tt.triangles)
			}
			if rep.Password != tt.password {
				t.Errorf("password = %q, want %q", rep.Password, tt.password)
			}
			if rep.Filter != tt.filter {
				t.Errorf("filter = %q, want %q", rep.Filter, tt.filter)
			}
			if rep.Stats.Nodes != 16 {
				t.Errorf("nodes = %d, want 16", rep.Stats.Nodes)
			}
		})
	}
}

func TestAnalyzeCRLF(t *testing.T) {
	_, ts := newTestServer(t)
	body := strings.ReplaceAll(sampleBody(t), "\n", "\r\n")

	resp := post(t, ts.URL+"/v1/analyze", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if rep := decode[graph.Report](t, resp); rep.Triangles != 7 {
		t.Errorf("triangles = %d, want 7", rep.Triangles)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	s, ts := newTestServer(t)
	s.MaxBodyBytes = 64

	tests := []struct {
		name    string
		query   string
		body    string
		status  int
		code    string
		message string
	}{
		{"malformed line", "", "kh-tc\nkhtc\n", http.StatusBadRequest, "MALFORMED_INPUT", "line 2"},
		{"self loop", "", "kh-kh\n", http.StatusBadRequest, "MALFORMED_INPUT", "self-loop"},
		{"bad strategy", "?strategy=random", "kh-tc\n", http.StatusBadRequest, "INVALID_STRATEGY", "strategy"},
		{"bad workers", "?workers=many", "kh-tc\n", http.StatusBadRequest, "INVALID_INPUT", "workers"},
		{"bad bool", "?all=maybe", "kh-tc\n", http.StatusBadRequest, "INVALID_INPUT", "boolean"},
		{"long prefix", "?prefix=abc", "kh-tc\n", http.StatusBadRequest, "INVALID_INPUT", "prefix"},
		{"body too large", "", strings.Repeat("kh-tc\n", 20), http.StatusRequestEntityTooLarge, "INVALID_INPUT", "exceeds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, ts.URL+"/v1/analyze"+tt.query, tt.body)
			if resp.StatusCode != tt.status {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			e := decode[errorBody](t, resp)
			if e.Code != tt.code {
				t.Errorf("code = %q, want %q", e.Code, tt.code)
			}
			if !strings.Contains(e.Message, tt.message) {
				t.Errorf("message %q should contain %q", e.Message, tt.message)
			}
		})
	}
}

func TestAnalyzeEmptyBody(t *testing.T) {
	_, ts := newTestServer(t)
	resp := post(t, ts.URL+"/v1/analyze", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	rep := decode[graph.Report](t, resp)
	if rep.Triangles != 0 || rep.Password != "" {
		t.Errorf("report = %+v", rep)
	}
}

func TestRouting(t *testing.T) {
	_, ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/analyze")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /v1/analyze status = %d, want 405", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + "/nope")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	if e := decode[errorBody](t, resp); e.Code != "NOT_FOUND" {
		t.Errorf("code = %q", e.Code)
	}
}

func TestRender(t *testing.T) {
	_, ts := newTestServer(t)
	body := sampleBody(t)

	t.Run("dot", func(t *testing.T) {
		resp := post(t, ts.URL+"/v1/render?format=dot&strategy=exact", body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/vnd.graphviz") {
			t.Errorf("Content-Type = %q", ct)
		}
		if _, err := uuid.Parse(resp.Header.Get("X-Run-ID")); err != nil {
			t.Errorf("X-Run-ID should be a UUID: %v", err)
		}
		data, _ := io.ReadAll(resp.Body)
		if !strings.HasPrefix(string(data), "graph G {") || !strings.Contains(string(data), "#d32f2f") {
			t.Errorf("unexpected DOT:\n%s", data)
		}
	})

	t.Run("edges", func(t *testing.T) {
		resp := post(t, ts.URL+"/v1/render?format=edges", body)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		data, _ := io.ReadAll(resp.Body)
		if n := len(strings.Fields(string(data))); n != 32 {
			t.Errorf("got %d edges, want 32", n)
		}
	})

	t.Run("invalid format", func(t *testing.T) {
		resp := post(t, ts.URL+"/v1/render?format=gif", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}
		if e := decode[errorBody](t, resp); e.Code != "INVALID_FORMAT" {
			t.Errorf("code = %q", e.Code)
		}
	})

	t.Run("invalid engine", func(t *testing.T) {
		resp := post(t, ts.URL+"/v1/render?format=dot&engine=sfdp", body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", resp.StatusCode)
		}
	})
}

func TestConcurrentIdenticalRequests(t *testing.T) {
	_, ts := newTestServer(t)
	body := sampleBody(t)

	const n = 8
	var wg sync.WaitGroup
	reports := make([]graph.Report, n)
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := http.Post(ts.URL+"/v1/analyze?strategy=exact", "text/plain", strings.NewReader(body))
			if err != nil {
				errs <- err
				return
			}
			defer resp.Body.Close()
			if err := json.NewDecoder(resp.Body).Decode(&reports[i]); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
	for i, rep := range reports {
		if rep.Password != "co,de,ka,ta" {
			t.Errorf("report %d password = %q", i, rep.Password)
		}
	}
}

type recordingHTTPHooks struct {
	observability.NoopHTTPHooks

	mu     sync.Mutex
	routes []string
	status []int
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, method, route string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.routes = append(h.routes, method+" "+route)
	h.status = append(h.status, status)
}

func (h *recordingHTTPHooks) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.routes)
}

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHTTPHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	_, ts := newTestServer(t)
	post(t, ts.URL+"/v1/analyze", "kh-tc\n")
	post(t, ts.URL+"/v1/analyze", "bad\n")

	// The hook runs after the handler returns, which can be after the client
	// has read the response.
	deadline := time.Now().Add(2 * time.Second)
	for hooks.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	hooks.mu.Lock()
	defer hooks.mu.Unlock()
	if len(hooks.routes) != 2 {
		t.Fatalf("recorded %d responses, want 2", len(hooks.routes))
	}
	if hooks.routes[0] != "POST /v1/analyze" {
		t.Errorf("route = %q, want the chi pattern", hooks.routes[0])
	}
	if hooks.status[0] != http.StatusOK || hooks.status[1] != http.StatusBadRequest {
		t.Errorf("statuses = %v", hooks.status)
	}
}
