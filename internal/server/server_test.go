package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/hferras/depsolve/pkg/cache"
	"github.com/hferras/depsolve/pkg/graphio"
	"github.com/hferras/depsolve/pkg/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	srv := httptest.NewServer(New(store.NewMemoryStore(), fc, nil).Router())
	t.Cleanup(srv.Close)
	return srv
}

// worldGraph: app depends on lib (runtime) and docs (optional); docs depends
// on app post-runtime, closing a soft cycle.
func worldGraph() graphio.Graph {
	return graphio.Graph{
		Nodes: []graphio.Node{{ID: "app"}, {ID: "lib"}, {ID: "docs"}},
		Edges: []graphio.Edge{
			{Child: "app", Parent: "lib", Priorities: []graphio.Priority{{Class: "runtime"}}},
			{Child: "app", Parent: "docs", Priorities: []graphio.Priority{{Class: "optional"}}},
			{Child: "docs", Parent: "app", Priorities: []graphio.Priority{{Class: "runtime_post"}}},
		},
	}
}

func createGraph(t *testing.T, srv *httptest.Server, name string, g graphio.Graph) string {
	t.Helper()
	body, _ := json.Marshal(createRequest{Name: name, Graph: g})
	resp, err := http.Post(srv.URL+"/v1/graphs", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/graphs: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var doc store.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	return doc.ID
}

func getJSON(t *testing.T, url string, v any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if v != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	resp := getJSON(t, srv.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz status = %d", resp.StatusCode)
	}
}

func TestCreateAndGet(t *testing.T) {
	srv := newTestServer(t)
	id := createGraph(t, srv, "world", worldGraph())

	var doc store.Document
	resp := getJSON(t, srv.URL+"/v1/graphs/"+id, &doc)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get status = %d", resp.StatusCode)
	}
	if doc.Name != "world" || len(doc.Graph.Nodes) != 3 {
		t.Errorf("document = %+v", doc)
	}
	if doc.Hash == "" {
		t.Error("content hash not set")
	}
}

func TestCreateValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"BadJSON", `{`},
		{"EmptyName", `{"name":"","graph":{}}`},
		{"BadNodeID", `{"name":"ok","graph":{"nodes":[{"id":"../etc"}]}}`},
		{"BadClass", `{"name":"ok","graph":{"edges":[{"child":"a","parent":"b","priorities":[{"class":"sometimes"}]}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+"/v1/graphs", "application/json", strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", resp.StatusCode)
			}
		})
	}
}

func TestList(t *testing.T) {
	srv := newTestServer(t)
	createGraph(t, srv, "one", worldGraph())
	createGraph(t, srv, "two", worldGraph())

	var out []documentSummary
	getJSON(t, srv.URL+"/v1/graphs", &out)
	if len(out) != 2 {
		t.Fatalf("listed %d graphs, want 2", len(out))
	}
	if out[0].Nodes != 3 || out[0].Edges != 3 {
		t.Errorf("summary counts = %+v", out[0])
	}
}

func TestDelete(t *testing.T) {
	srv := newTestServer(t)
	id := createGraph(t, srv, "world", worldGraph())

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/v1/graphs/"+id, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}

	if resp := getJSON(t, srv.URL+"/v1/graphs/"+id, nil); resp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", resp.StatusCode)
	}
}

func TestUnknownGraph(t *testing.T) {
	srv := newTestServer(t)
	resp := getJSON(t, srv.URL+"/v1/graphs/nope/leaves", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestLeavesAndRoots(t *testing.T) {
	srv := newTestServer(t)
	id := createGraph(t, srv, "world", worldGraph())

	var leaves nodesResponse
	getJSON(t, srv.URL+"/v1/graphs/"+id+"/leaves", &leaves)
	// lib has no dependencies; app and docs are locked in the soft cycle.
	if !slices.Equal(leaves.Nodes, []string{"lib"}) {
		t.Errorf("leaves = %v, want [lib]", leaves.Nodes)
	}

	var relaxed nodesResponse
	getJSON(t, srv.URL+"/v1/graphs/"+id+"/leaves?relax=soft", &relaxed)
	// Ignoring post-runtime edges frees docs; app keeps its runtime edge.
	if !slices.Equal(relaxed.Nodes, []string{"lib", "docs"}) {
		t.Errorf("relaxed leaves = %v, want [lib docs]", relaxed.Nodes)
	}

	var roots nodesResponse
	getJSON(t, srv.URL+"/v1/graphs/"+id+"/roots", &roots)
	if slices.Contains(roots.Nodes, "lib") {
		t.Errorf("roots = %v, lib has a dependent", roots.Nodes)
	}
}

func TestInvalidRelax(t *testing.T) {
	srv := newTestServer(t)
	id := createGraph(t, srv, "world", worldGraph())

	resp := getJSON(t, srv.URL+"/v1/graphs/"+id+"/leaves?relax=sometimes", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCycles(t *testing.T) {
	srv := newTestServer(t)
	id := createGraph(t, srv, "world", worldGraph())

	var out cyclesResponse
	getJSON(t, srv.URL+"/v1/graphs/"+id+"/cycles", &out)
	if len(out.Cycles) == 0 {
		t.Fatal("no cycles reported")
	}
	for _, cycle := range out.Cycles {
		if !slices.Contains(cycle, "app") || !slices.Contains(cycle, "docs") {
			t.Errorf("unexpected cycle %v", cycle)
		}
	}

	var filtered cyclesResponse
	getJSON(t, srv.URL+"/v1/graphs/"+id+"/cycles?relax=soft", &filtered)
	if len(filtered.Cycles) != 0 {
		t.Errorf("soft-relaxed cycles = %v, want none", filtered.Cycles)
	}

	resp := getJSON(t, srv.URL+"/v1/graphs/"+id+"/cycles?max_length=x", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad max_length status = %d, want 400", resp.StatusCode)
	}
}

func TestPath(t *testing.T) {
	srv := newTestServer(t)
	id := createGraph(t, srv, "world", worldGraph())

	var out pathResponse
	getJSON(t, fmt.Sprintf("%s/v1/graphs/%s/path?from=app&to=lib", srv.URL, id), &out)
	if !out.Found || !slices.Equal(out.Path, []string{"app", "lib"}) {
		t.Errorf("path = %+v", out)
	}

	var missing pathResponse
	getJSON(t, fmt.Sprintf("%s/v1/graphs/%s/path?from=lib&to=docs", srv.URL, id), &missing)
	if missing.Found {
		t.Errorf("unreachable pair reported found: %+v", missing)
	}

	resp := getJSON(t, fmt.Sprintf("%s/v1/graphs/%s/path?from=app&to=ghost", srv.URL, id), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown node status = %d, want 404", resp.StatusCode)
	}

	resp = getJSON(t, fmt.Sprintf("%s/v1/graphs/%s/path?from=app", srv.URL, id), nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("missing to status = %d, want 400", resp.StatusCode)
	}
}

func TestOrder(t *testing.T) {
	srv := newTestServer(t)
	id := createGraph(t, srv, "world", worldGraph())

	var out orderResponse
	getJSON(t, srv.URL+"/v1/graphs/"+id+"/order", &out)
	if !out.Complete {
		t.Fatalf("order incomplete: %+v", out)
	}
	if out.Order[0] != "lib" {
		t.Errorf("order = %v, lib must come first", out.Order)
	}
	if len(out.Order) != 3 {
		t.Errorf("order = %v, want all three nodes", out.Order)
	}
}

func TestQueryCaching(t *testing.T) {
	srv := newTestServer(t)
	id := createGraph(t, srv, "world", worldGraph())

	var first, second cyclesResponse
	getJSON(t, srv.URL+"/v1/graphs/"+id+"/cycles", &first)
	getJSON(t, srv.URL+"/v1/graphs/"+id+"/cycles", &second)

	if len(first.Cycles) != len(second.Cycles) {
		t.Errorf("cached response differs: %v vs %v", first.Cycles, second.Cycles)
	}
}

func TestDOT(t *testing.T) {
	srv := newTestServer(t)
	id := createGraph(t, srv, "world", worldGraph())

	resp, err := http.Get(srv.URL + "/v1/graphs/" + id + "/dot")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Content-Type"); got != "text/vnd.graphviz" {
		t.Errorf("content type = %q", got)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"app" -> "lib"`) {
		t.Errorf("DOT output missing edge:\n%s", buf.String())
	}
}
