package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/fs-kitamura/factorplot/internal/cache"
	"github.com/fs-kitamura/factorplot/internal/db"
)

//go:embed static
var staticFiles embed.FS

type Server struct {
	db       *db.DB
	addr     string
	svgCache *cache.SVGCache
}

func NewServer(database *db.DB, addr string) *Server {
	cacheDir := os.Getenv("SVG_CACHE_DIR")
	if cacheDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cacheDir = filepath.Join(home, ".cache", "factorplot", "svg")
		} else {
			cacheDir = filepath.Join(os.TempDir(), "factorplot-svg")
		}
	}

	maxDatasets := 20
	if envMax := os.Getenv("SVG_CACHE_MAX_DATASETS"); envMax != "" {
		if n, err := strconv.Atoi(envMax); err == nil && n > 0 {
			maxDatasets = n
		}
	}

	svgCache, err := cache.NewSVGCache(cacheDir, maxDatasets)
	if err != nil {
		fmt.Printf("Warning: failed to initialize SVG cache: %v\n", err)
	}

	return &Server{
		db:       database,
		addr:     addr,
		svgCache: svgCache,
	}
}

func (s *Server) Start(openBrowser bool) error {
	mux := http.NewServeMux()
	s.registerRoutes(mux)

	if openBrowser {
		url := fmt.Sprintf("http://localhost%s", s.addr)
		go openURL(url)
	}

	fmt.Printf("Starting server at http://localhost%s\n", s.addr)
	return http.ListenAndServe(s.addr, mux)
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	appFS, err := fs.Sub(staticFiles, "static")
	if err == nil {
		mux.Handle("/", http.FileServer(http.FS(appFS)))
	}

	mux.HandleFunc("/api/datasets", s.handleDatasets)
	mux.HandleFunc("/api/datasets/", s.routeDatasetAPI)
}

func openURL(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", url)
	}
	if cmd != nil {
		_ = cmd.Start()
	}
}

func (s *Server) routeDatasetAPI(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch {
	case strings.HasSuffix(path, "/chart.svg"):
		s.handleChartSVG(w, r)
	case strings.HasSuffix(path, "/summary"):
		s.handleSummary(w, r)
	default:
		s.handleDataset(w, r)
	}
}
