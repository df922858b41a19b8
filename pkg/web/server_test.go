package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/awork-io/sting/pkg/entity"
	"github.com/awork-io/sting/pkg/graph"
	"github.com/awork-io/sting/pkg/table"
)

// serverFixture loads a server with A -> B -> A plus an unused C.
func serverFixture() *Server {
	root := "/repo"
	file := func(rel string) string { return filepath.Join(root, rel) }

	tbl := table.New()
	a := entity.New("A", entity.KindClass, file("libs/a.ts"),
		[]entity.ImportRef{entity.NewImportRef("B", file("libs/b.ts"))})
	b := entity.New("B", entity.KindService, file("libs/b.ts"),
		[]entity.ImportRef{entity.NewImportRef("A", file("libs/a.ts"))})
	a.Used = true
	b.Used = true
	c := entity.New("C", entity.KindConst, file("libs/c.ts"), nil)
	for _, e := range []*entity.Entity{a, b, c} {
		tbl[e.ID] = e
	}

	s := NewServer(100, 10)
	s.SetAnalysis(tbl, graph.Build(tbl))
	return s
}

func get(t *testing.T, s *Server, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHandleGraph(t *testing.T) {
	s := serverFixture()
	rec := get(t, s, "/api/graph")
	require.Equal(t, http.StatusOK, rec.Code)

	var decoded struct {
		Nodes []map[string]any `json:"nodes"`
		Links []map[string]any `json:"links"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	assert.Len(t, decoded.Nodes, 3)
	assert.Len(t, decoded.Links, 2)
}

func TestHandleGraphWithoutAnalysis(t *testing.T) {
	s := NewServer(100, 10)
	rec := get(t, s, "/api/graph")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"nodes":[],"links":[]}`, rec.Body.String())
}

func TestHandleEntitiesFilters(t *testing.T) {
	s := serverFixture()

	var all []entityView
	require.NoError(t, json.Unmarshal(get(t, s, "/api/entities").Body.Bytes(), &all))
	assert.Len(t, all, 3)

	var services []entityView
	require.NoError(t, json.Unmarshal(get(t, s, "/api/entities?type=service").Body.Bytes(), &services))
	require.Len(t, services, 1)
	assert.Equal(t, "B", services[0].Name)

	var unused []entityView
	require.NoError(t, json.Unmarshal(get(t, s, "/api/entities?unused=true").Body.Bytes(), &unused))
	require.Len(t, unused, 1)
	assert.Equal(t, "C", unused[0].Name)
}

func TestHandleCycles(t *testing.T) {
	s := serverFixture()
	rec := get(t, s, "/api/cycles")
	require.Equal(t, http.StatusOK, rec.Code)

	var decoded struct {
		Cycles    []cycleView `json:"cycles"`
		Truncated bool        `json:"truncated"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	require.Len(t, decoded.Cycles, 1)
	assert.Len(t, decoded.Cycles[0].Nodes, 2)
	assert.False(t, decoded.Truncated)
}

func TestRequestIDHeader(t *testing.T) {
	s := serverFixture()
	rec := get(t, s, "/api/graph")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
