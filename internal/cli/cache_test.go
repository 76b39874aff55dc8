package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/listgraph/pkg/cache"
)

func TestRenderCacheDir(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	c.cfg.Cache.Dir = "/srv/renders"
	dir, err := c.renderCacheDir()
	if err != nil || dir != "/srv/renders" {
		t.Errorf("renderCacheDir() = %q, %v", dir, err)
	}

	c.cfg.Cache.Dir = ""
	want, _ := cacheDir()
	if dir, _ := c.renderCacheDir(); dir != want {
		t.Errorf("renderCacheDir() = %q, want default %q", dir, want)
	}
}

func TestCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "renders")
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(ctx, "fresh", []byte("a"), time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := fc.Set(ctx, "stale", []byte("b"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)

	c := New(os.Stderr, LogInfo)
	c.cfg.Cache.Dir = dir

	prune := c.cacheClearCommand(false)
	if err := prune.RunE(prune, nil); err != nil {
		t.Fatalf("prune: %v", err)
	}
	if _, ok, _ := fc.Get(ctx, "fresh"); !ok {
		t.Error("prune removed a fresh entry")
	}

	clearCmd := c.cacheClearCommand(true)
	if err := clearCmd.RunE(clearCmd, nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, _ := fc.Get(ctx, "fresh"); ok {
		t.Error("clear kept an entry")
	}
}

func TestCacheClear_MissingDir(t *testing.T) {
	c := New(os.Stderr, LogInfo)
	c.cfg.Cache.Dir = filepath.Join(t.TempDir(), "none")
	cmd := c.cacheClearCommand(true)
	if err := cmd.RunE(cmd, nil); err != nil {
		t.Errorf("clear on missing dir: %v", err)
	}
}
