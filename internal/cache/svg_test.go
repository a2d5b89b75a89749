package cache

import (
	"bytes"
	"errors"
	"testing"
)

func TestSVGCache(t *testing.T) {
	newCache := func(t *testing.T, maxDatasets int) *SVGCache {
		t.Helper()
		c, err := NewSVGCache(t.TempDir(), maxDatasets)
		if err != nil {
			t.Fatalf("new cache: %v", err)
		}
		return c
	}

	t.Run("miss then hit", func(t *testing.T) {
		c := newCache(t, 0)

		if _, ok := c.Get(1, "chart"); ok {
			t.Fatal("expected cache miss")
		}
		if err := c.Put(1, "chart", []byte("<svg/>")); err != nil {
			t.Fatalf("put: %v", err)
		}
		svg, ok := c.Get(1, "chart")
		if !ok || !bytes.Equal(svg, []byte("<svg/>")) {
			t.Fatalf("expected cached bytes, got ok=%v svg=%q", ok, svg)
		}
	})

	t.Run("GetOrRender renders once", func(t *testing.T) {
		c := newCache(t, 0)

		calls := 0
		render := func() ([]byte, error) {
			calls++
			return []byte("<svg/>"), nil
		}

		for i := 0; i < 2; i++ {
			if _, err := c.GetOrRender(2, "chart", render); err != nil {
				t.Fatalf("get or render: %v", err)
			}
		}
		if calls != 1 {
			t.Fatalf("expected 1 render call, got %d", calls)
		}
	})

	t.Run("GetOrRender propagates render errors", func(t *testing.T) {
		c := newCache(t, 0)

		wantErr := errors.New("boom")
		_, err := c.GetOrRender(3, "chart", func() ([]byte, error) {
			return nil, wantErr
		})
		if !errors.Is(err, wantErr) {
			t.Fatalf("expected render error, got %v", err)
		}
	})

	t.Run("prune removes stale dataset dirs", func(t *testing.T) {
		c := newCache(t, 0)

		for id := int64(1); id <= 3; id++ {
			if err := c.Put(id, "chart", []byte("<svg/>")); err != nil {
				t.Fatalf("put: %v", err)
			}
		}
		if err := c.PruneStale([]int64{1, 3}); err != nil {
			t.Fatalf("prune: %v", err)
		}
		if _, ok := c.Get(2, "chart"); ok {
			t.Fatal("expected dataset 2 to be pruned")
		}
		if _, ok := c.Get(1, "chart"); !ok {
			t.Fatal("expected dataset 1 to survive")
		}
	})

	t.Run("delete dataset", func(t *testing.T) {
		c := newCache(t, 0)

		if err := c.Put(4, "chart", []byte("<svg/>")); err != nil {
			t.Fatalf("put: %v", err)
		}
		if err := c.DeleteDataset(4); err != nil {
			t.Fatalf("delete: %v", err)
		}
		if _, ok := c.Get(4, "chart"); ok {
			t.Fatal("expected cache entry to be gone")
		}
	})
}
