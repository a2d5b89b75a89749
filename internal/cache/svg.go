package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// SVGCache stores rendered chart SVGs on disk, one directory per
// stored dataset, so the web server can re-serve charts without
// re-rendering them.
type SVGCache struct {
	cacheDir    string
	maxDatasets int
}

func NewSVGCache(cacheDir string, maxDatasets int) (*SVGCache, error) {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &SVGCache{
		cacheDir:    cacheDir,
		maxDatasets: maxDatasets,
	}, nil
}

func (c *SVGCache) datasetDir(datasetID int64) string {
	return filepath.Join(c.cacheDir, fmt.Sprintf("dataset-%d", datasetID))
}

func (c *SVGCache) svgPath(datasetID int64, key string) string {
	hash := sha256.Sum256([]byte(key))
	filename := hex.EncodeToString(hash[:8]) + ".svg"
	return filepath.Join(c.datasetDir(datasetID), filename)
}

func (c *SVGCache) Get(datasetID int64, key string) ([]byte, bool) {
	path := c.svgPath(datasetID, key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

func (c *SVGCache) Put(datasetID int64, key string, svg []byte) error {
	dir := c.datasetDir(datasetID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create dataset cache dir: %w", err)
	}

	path := c.svgPath(datasetID, key)
	tmp, err := os.CreateTemp(dir, "svg-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp svg: %w", err)
	}
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if err := tmp.Chmod(0644); err != nil {
		return fmt.Errorf("chmod temp svg: %w", err)
	}
	if n, err := tmp.Write(svg); err != nil {
		return fmt.Errorf("write temp svg: %w", err)
	} else if n < len(svg) {
		return fmt.Errorf("write temp svg: short write")
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp svg: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(path)
		if err := os.Rename(tmp.Name(), path); err != nil {
			return fmt.Errorf("rename svg: %w", err)
		}
	}
	return nil
}

// GetOrRender returns the cached chart for (datasetID, key), invoking
// render and caching its output on a miss.
func (c *SVGCache) GetOrRender(datasetID int64, key string, render func() ([]byte, error)) ([]byte, error) {
	if svg, ok := c.Get(datasetID, key); ok {
		return svg, nil
	}

	svg, err := render()
	if err != nil {
		return nil, err
	}

	_ = c.Put(datasetID, key, svg)

	return svg, nil
}

// PruneStale removes cache directories for datasets not in keepIDs.
// When maxDatasets is set, only the newest maxDatasets IDs are kept.
func (c *SVGCache) PruneStale(keepIDs []int64) error {
	if c.maxDatasets > 0 && len(keepIDs) > c.maxDatasets {
		sort.Slice(keepIDs, func(i, j int) bool {
			return keepIDs[i] > keepIDs[j]
		})
		keepIDs = keepIDs[:c.maxDatasets]
	}

	keepSet := make(map[int64]bool)
	for _, id := range keepIDs {
		keepSet[id] = true
	}

	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cache dir: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "dataset-") {
			continue
		}

		idStr := strings.TrimPrefix(entry.Name(), "dataset-")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}

		if !keepSet[id] {
			dir := filepath.Join(c.cacheDir, entry.Name())
			if err := os.RemoveAll(dir); err != nil {
				return fmt.Errorf("remove dataset-%d cache: %w", id, err)
			}
		}
	}

	return nil
}

func (c *SVGCache) DeleteDataset(datasetID int64) error {
	dir := c.datasetDir(datasetID)
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove dataset cache: %w", err)
	}
	return nil
}

func (c *SVGCache) CacheDir() string {
	return c.cacheDir
}
