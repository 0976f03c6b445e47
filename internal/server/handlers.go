package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hferras/depsolve/pkg/cache"
	"github.com/hferras/depsolve/pkg/depgraph"
	apperrors "github.com/hferras/depsolve/pkg/errors"
	"github.com/hferras/depsolve/pkg/graphio"
	"github.com/hferras/depsolve/pkg/mergeorder"
	"github.com/hferras/depsolve/pkg/observability"
	"github.com/hferras/depsolve/pkg/priority"
	"github.com/hferras/depsolve/pkg/render"
	"github.com/hferras/depsolve/pkg/store"
)

type createRequest struct {
	Name  string        `json:"name"`
	Graph graphio.Graph `json:"graph"`
}

type documentSummary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Hash      string    `json:"hash"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	CreatedAt time.Time `json:"created_at"`
}

type nodesResponse struct {
	Nodes []string `json:"nodes"`
	Relax string   `json:"relax"`
}

type cyclesResponse struct {
	Cycles    [][]string `json:"cycles"`
	Relax     string     `json:"relax"`
	MaxLength int        `json:"max_length"`
}

type pathResponse struct {
	Path  []string `json:"path"`
	Found bool     `json:"found"`
}

type orderStep struct {
	Nodes []string `json:"nodes"`
	Relax string   `json:"relax"`
}

type orderResponse struct {
	Steps      []orderStep `json:"steps"`
	Order      []string    `json:"order"`
	Complete   bool        `json:"complete"`
	Unresolved []string    `json:"unresolved,omitempty"`
	Cycles     [][]string  `json:"cycles,omitempty"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	if err := apperrors.ValidateGraphName(req.Name); err != nil {
		writeError(w, err)
		return
	}
	for _, n := range req.Graph.Nodes {
		if err := apperrors.ValidateNodeID(n.ID); err != nil {
			writeError(w, err)
			return
		}
	}
	if _, err := graphio.ToGraph(req.Graph); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInvalidGraph, err, "invalid graph"))
		return
	}

	doc, err := store.NewDocument(req.Name, req.Graph)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "build document"))
		return
	}
	if err := s.store.Save(r.Context(), doc); err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeStorage, err, "save graph"))
		return
	}
	s.logger.Info("graph stored", "id", doc.ID, "name", doc.Name, "nodes", len(doc.Graph.Nodes))
	writeJSON(w, http.StatusCreated, doc)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	docs, err := s.store.List(r.Context())
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeStorage, err, "list graphs"))
		return
	}
	out := make([]documentSummary, len(docs))
	for i, doc := range docs {
		out[i] = documentSummary{
			ID:        doc.ID,
			Name:      doc.Name,
			Hash:      doc.Hash,
			Nodes:     len(doc.Graph.Nodes),
			Edges:     len(doc.Graph.Edges),
			CreatedAt: doc.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	doc, err := s.loadDocument(r)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.store.Delete(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, apperrors.New(apperrors.ErrCodeGraphNotFound, "no graph with id %s", id))
		return
	}
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeStorage, err, "delete graph"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLeaves(w http.ResponseWriter, r *http.Request) {
	s.handleNodeQuery(w, r, "leaves", func(g *depgraph.Graph[string], f *depgraph.Filter) []string {
		return g.LeafNodes(f)
	})
}

func (s *Server) handleRoots(w http.ResponseWriter, r *http.Request) {
	s.handleNodeQuery(w, r, "roots", func(g *depgraph.Graph[string], f *depgraph.Filter) []string {
		return g.RootNodes(f)
	})
}

func (s *Server) handleNodeQuery(w http.ResponseWriter, r *http.Request, op string,
	query func(*depgraph.Graph[string], *depgraph.Filter) []string) {

	doc, g, err := s.loadGraph(r)
	if err != nil {
		writeError(w, err)
		return
	}
	filter, relax, err := parseRelax(r)
	if err != nil {
		writeError(w, err)
		return
	}

	key := cache.QueryKey(doc.Hash, op, relax)
	if s.serveCached(w, r, key) {
		return
	}

	nodes := query(g, filter)
	if nodes == nil {
		nodes = []string{}
	}
	s.respondCached(w, r, key, nodesResponse{Nodes: nodes, Relax: relax})
}

func (s *Server) handleCycles(w http.ResponseWriter, r *http.Request) {
	doc, g, err := s.loadGraph(r)
	if err != nil {
		writeError(w, err)
		return
	}
	filter, relax, err := parseRelax(r)
	if err != nil {
		writeError(w, err)
		return
	}
	maxLength := 0
	if raw := r.URL.Query().Get("max_length"); raw != "" {
		maxLength, err = strconv.Atoi(raw)
		if err != nil || maxLength < 0 {
			writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid max_length %q", raw))
			return
		}
	}

	key := cache.QueryKey(doc.Hash, "cycles", relax, maxLength)
	if s.serveCached(w, r, key) {
		return
	}

	ctx := r.Context()
	start := time.Now()
	observability.Query().OnQueryStart(ctx, "cycles", g.Len())
	cycles := g.Cycles(filter, maxLength)
	observability.Query().OnQueryComplete(ctx, "cycles", g.Len(), time.Since(start), nil)

	if cycles == nil {
		cycles = [][]string{}
	}
	s.respondCached(w, r, key, cyclesResponse{Cycles: cycles, Relax: relax, MaxLength: maxLength})
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	_, g, err := s.loadGraph(r)
	if err != nil {
		writeError(w, err)
		return
	}
	filter, _, err := parseRelax(r)
	if err != nil {
		writeError(w, err)
		return
	}

	from, to := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if from == "" || to == "" {
		writeError(w, apperrors.New(apperrors.ErrCodeInvalidInput, "both from and to are required"))
		return
	}

	path, err := g.ShortestPath(from, to, filter)
	if errors.Is(err, depgraph.ErrNodeNotFound) {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeNodeNotFound, err, "unknown node"))
		return
	}
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "shortest path"))
		return
	}
	writeJSON(w, http.StatusOK, pathResponse{Path: path, Found: path != nil})
}

func (s *Server) handleOrder(w http.ResponseWriter, r *http.Request) {
	doc, g, err := s.loadGraph(r)
	if err != nil {
		writeError(w, err)
		return
	}

	key := cache.QueryKey(doc.Hash, "order")
	if s.serveCached(w, r, key) {
		return
	}

	ctx := r.Context()
	start := time.Now()
	observability.Query().OnQueryStart(ctx, "order", g.Len())
	plan := mergeorder.Compute(g, mergeorder.Standard())
	observability.Query().OnQueryComplete(ctx, "order", g.Len(), time.Since(start), nil)

	resp := orderResponse{
		Steps:      make([]orderStep, len(plan.Steps)),
		Order:      plan.Order(),
		Complete:   plan.Complete(),
		Unresolved: plan.Unresolved,
		Cycles:     plan.Cycles,
	}
	for i, step := range plan.Steps {
		resp.Steps[i] = orderStep{Nodes: step.Nodes, Relax: step.Relax}
	}
	if resp.Order == nil {
		resp.Order = []string{}
	}
	s.respondCached(w, r, key, resp)
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	_, g, err := s.loadGraph(r)
	if err != nil {
		writeError(w, err)
		return
	}
	opts := render.Options{Labels: r.URL.Query().Get("labels") != "false"}
	dot := render.ToDOT(g, opts)

	w.Header().Set("Content-Type", "text/vnd.graphviz")
	_, _ = w.Write([]byte(dot))
}

// loadDocument fetches the document addressed by the route's id parameter.
func (s *Server) loadDocument(r *http.Request) (*store.Document, error) {
	id := chi.URLParam(r, "id")
	doc, err := s.store.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.New(apperrors.ErrCodeGraphNotFound, "no graph with id %s", id)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeStorage, err, "load graph")
	}
	return doc, nil
}

// loadGraph fetches the document and rebuilds its in-memory graph.
func (s *Server) loadGraph(r *http.Request) (*store.Document, *depgraph.Graph[string], error) {
	doc, err := s.loadDocument(r)
	if err != nil {
		return nil, nil, err
	}
	g, err := graphio.ToGraph(doc.Graph)
	if err != nil {
		return nil, nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "rebuild graph %s", doc.ID)
	}
	return doc, g, nil
}

// parseRelax resolves the relax query parameter to a filter.
func parseRelax(r *http.Request) (*depgraph.Filter, string, error) {
	name := r.URL.Query().Get("relax")
	filter, err := priority.FilterByName(name)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ErrCodeInvalidRelax, err, "invalid relax level")
	}
	if name == "" {
		name = "none"
	}
	return filter, name, nil
}

// serveCached writes a cached query result if one exists.
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, key string) bool {
	data, hit, err := s.cache.Get(r.Context(), key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(r.Context(), "query")
		return false
	}
	observability.Cache().OnCacheHit(r.Context(), "query")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
	return true
}

// respondCached writes v as JSON and stores the bytes for later hits.
func (s *Server) respondCached(w http.ResponseWriter, r *http.Request, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		writeError(w, apperrors.Wrap(apperrors.ErrCodeInternal, err, "encode response"))
		return
	}
	if err := s.cache.Set(r.Context(), key, data, queryTTL); err != nil {
		s.logger.Warn("cache write failed", "key", key, "err", err)
	} else {
		observability.Cache().OnCacheSet(r.Context(), "query", len(data))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
