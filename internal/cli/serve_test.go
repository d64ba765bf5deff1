package cli

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/floorplace/floorplace/pkg/cache"
	"github.com/floorplace/floorplace/pkg/circuit"
	"github.com/floorplace/floorplace/pkg/netlist"
	"github.com/floorplace/floorplace/pkg/search"
	"github.com/floorplace/floorplace/pkg/store"
)

func testServer(t *testing.T) (*runServer, *store.Run) {
	t.Helper()

	s, err := store.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}

	c, err := circuit.New(10, 10)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := c.Connect("cpu", circuit.Module{X: 0, Y: 0, Width: 2, Height: 2}, circuit.Pin{DX: 0, DY: 0}); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	run := store.NewRun("", store.Options{MaxIterations: 10, MaxStagnation: 3},
		netlist.CapturePlacement(c, 6), search.Result{Objective: 6, Feasible: true})
	if err := s.Put(context.Background(), run); err != nil {
		t.Fatalf("Put: %v", err)
	}

	return &runServer{
		store:  s,
		cache:  cache.NewNullCache(),
		keyer:  cache.NewScopedKeyer(nil, "serve:"),
		logger: log.New(io.Discard),
	}, run
}

func TestServeHealth(t *testing.T) {
	srv, _ := testServer(t)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestServeListRuns(t *testing.T) {
	srv, run := testServer(t)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/runs")
	if err != nil {
		t.Fatalf("GET /runs: %v", err)
	}
	defer resp.Body.Close()

	var summaries []store.Summary
	if err := json.NewDecoder(resp.Body).Decode(&summaries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(summaries) != 1 || summaries[0].ID != run.ID {
		t.Errorf("summaries = %+v, want one entry for %s", summaries, run.ID)
	}
}

func TestServeGetRun(t *testing.T) {
	srv, run := testServer(t)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/runs/" + run.ID)
	if err != nil {
		t.Fatalf("GET /runs/{id}: %v", err)
	}
	defer resp.Body.Close()

	var got store.Run
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != run.ID || got.Objective != 6 || !got.Feasible {
		t.Errorf("run = %+v", got)
	}
}

func TestServeGetRunNotFound(t *testing.T) {
	srv, _ := testServer(t)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/runs/00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestServeGetRunInvalidID(t *testing.T) {
	srv, _ := testServer(t)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/runs/not%20a%20run%20id")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestServeRunSVG(t *testing.T) {
	srv, run := testServer(t)
	ts := httptest.NewServer(srv.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/runs/" + run.ID + "/svg")
	if err != nil {
		t.Fatalf("GET svg: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Content-Type"); got != "image/svg+xml" {
		t.Errorf("Content-Type = %q", got)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.HasPrefix(string(body), "<svg ") {
		t.Error("response is not an SVG document")
	}
	if !strings.Contains(string(body), ">cpu</text>") {
		t.Error("module label missing from SVG")
	}
}
