package web

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/fs-kitamura/factorplot/internal/chart"
	"github.com/fs-kitamura/factorplot/internal/stats"
)

type groupResponse struct {
	X          string  `json:"x"`
	Series     string  `json:"series"`
	N          int     `json:"n"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	StdErr     float64 `json:"std_err"`
	HalfWidth  float64 `json:"half_width"`
	Degenerate bool    `json:"degenerate"`
}

func groupResponses(groups []stats.Group) []groupResponse {
	out := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, groupResponse{
			X:          g.X,
			Series:     g.Series,
			N:          g.N,
			Mean:       g.Mean,
			StdDev:     g.StdDev,
			StdErr:     g.StdErr,
			HalfWidth:  g.HalfWidth,
			Degenerate: g.Degenerate,
		})
	}
	return out
}

func (s *Server) handleDatasets(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil {
			limit = n
		}
	}

	metas, err := s.db.ListDatasets(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	type datasetResponse struct {
		ID               int64  `json:"id"`
		Name             string `json:"name"`
		XLabel           string `json:"x_label"`
		SeriesLabel      string `json:"series_label"`
		ValueLabel       string `json:"value_label"`
		Source           string `json:"source"`
		CreatedAt        string `json:"created_at"`
		ObservationCount int    `json:"observation_count"`
	}

	response := []datasetResponse{}
	for _, m := range metas {
		count, err := s.db.CountObservations(m.ID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		response = append(response, datasetResponse{
			ID:               m.ID,
			Name:             m.Name,
			XLabel:           m.XLabel,
			SeriesLabel:      m.SeriesLabel,
			ValueLabel:       m.ValueLabel,
			Source:           m.Source,
			CreatedAt:        m.CreatedAt,
			ObservationCount: count,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// datasetName pulls the {name} segment out of /api/datasets/{name}[/...].
func datasetName(path string) string {
	rest := strings.TrimPrefix(path, "/api/datasets/")
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	return rest
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	name := datasetName(r.URL.Path)
	if name == "" {
		http.Error(w, "dataset name required", http.StatusBadRequest)
		return
	}

	meta, err := s.db.GetMeta(name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "dataset not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	ds, err := s.db.GetDataset(name)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	groups, err := ds.Summarize()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	response := struct {
		ID               int64           `json:"id"`
		Name             string          `json:"name"`
		XLabel           string          `json:"x_label"`
		SeriesLabel      string          `json:"series_label"`
		ValueLabel       string          `json:"value_label"`
		Source           string          `json:"source"`
		CreatedAt        string          `json:"created_at"`
		ObservationCount int             `json:"observation_count"`
		Summary          []groupResponse `json:"summary"`
	}{
		ID:               meta.ID,
		Name:             meta.Name,
		XLabel:           meta.XLabel,
		SeriesLabel:      meta.SeriesLabel,
		ValueLabel:       meta.ValueLabel,
		Source:           meta.Source,
		CreatedAt:        meta.CreatedAt,
		ObservationCount: len(ds.Observations),
		Summary:          groupResponses(groups),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	name := datasetName(r.URL.Path)

	ds, err := s.db.GetDataset(name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "dataset not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	groups, err := ds.Summarize()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(groupResponses(groups)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) handleChartSVG(w http.ResponseWriter, r *http.Request) {
	name := datasetName(r.URL.Path)

	meta, err := s.db.GetMeta(name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "dataset not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	render := func() ([]byte, error) {
		ds, err := s.db.GetDataset(name)
		if err != nil {
			return nil, err
		}
		groups, err := ds.Summarize()
		if err != nil {
			return nil, err
		}
		cfg := chart.DefaultConfig(chartTitle(meta.Name, meta.ValueLabel),
			ds.XLabel, ds.SeriesLabel, ds.ValueLabel)
		return chart.Render(cfg, groups)
	}

	var svg []byte
	if s.svgCache != nil {
		svg, err = s.svgCache.GetOrRender(meta.ID, meta.Name, render)
	} else {
		svg, err = render()
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func chartTitle(name, valueLabel string) string {
	return fmt.Sprintf("%s: mean %s by group", name, valueLabel)
}
