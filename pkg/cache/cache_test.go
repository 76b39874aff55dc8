package cache

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/matzehuels/listgraph/pkg/observability"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := c.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get() = %q, %v, %v; want miss", data, hit, err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func newFileCache(t *testing.T) (*FileCache, *time.Time) {
	t.Helper()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, now := newFileCache(t)

	if err := c.Set(ctx, "k", []byte("svg"), time.Minute); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "svg" {
		t.Fatalf("Get() = %q, %v, %v", data, hit, err)
	}

	*now = now.Add(2 * time.Minute)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}

	if err := c.Set(ctx, "forever", []byte("x"), 0); err != nil {
		t.Fatal(err)
	}
	*now = now.Add(24 * time.Hour)
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl expired")
	}

	if err := c.Delete(ctx, "forever"); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "forever"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); hit {
		t.Error("deleted entry returned")
	}
}

func TestFileCache_CorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := newFileCache(t)

	path := c.path("bad")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "bad"); hit || err != nil {
		t.Errorf("Get(corrupt) = %v, %v; want miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry not removed")
	}
}

func TestFileCache_Purge(t *testing.T) {
	ctx := context.Background()
	c, now := newFileCache(t)

	_ = c.Set(ctx, "short", []byte("a"), time.Second)
	_ = c.Set(ctx, "long", []byte("b"), time.Hour)
	*now = now.Add(time.Minute)

	n, err := c.Purge(false)
	if err != nil || n != 1 {
		t.Fatalf("Purge(false) = %d, %v; want 1", n, err)
	}
	if _, hit, _ := c.Get(ctx, "long"); !hit {
		t.Error("live entry purged")
	}
	n, err = c.Purge(true)
	if err != nil || n != 1 {
		t.Fatalf("Purge(true) = %d, %v; want 1", n, err)
	}
}

type cacheEvents struct{ got []string }

func (h *cacheEvents) OnCacheHit(_ context.Context, k string)        { h.got = append(h.got, "hit:"+k) }
func (h *cacheEvents) OnCacheMiss(_ context.Context, k string)       { h.got = append(h.got, "miss:"+k) }
func (h *cacheEvents) OnCacheSet(_ context.Context, k string, _ int) { h.got = append(h.got, "set:"+k) }

func TestFetch(t *testing.T) {
	hooks := &cacheEvents{}
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	c, _ := newFileCache(t)
	calls := 0
	render := func() ([]byte, error) {
		calls++
		return []byte("<svg/>"), nil
	}

	for range 2 {
		data, err := Fetch(ctx, c, "svg", "key", time.Hour, render)
		if err != nil || string(data) != "<svg/>" {
			t.Fatalf("Fetch() = %q, %v", data, err)
		}
	}
	if calls != 1 {
		t.Errorf("render called %d times, want 1", calls)
	}
	want := []string{"miss:svg", "set:svg", "hit:svg"}
	if !slices.Equal(hooks.got, want) {
		t.Errorf("hooks = %v, want %v", hooks.got, want)
	}

	boom := errors.New("boom")
	if _, err := Fetch(ctx, c, "svg", "other", 0, func() ([]byte, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Errorf("Fetch() error = %v, want boom", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestKeyers(t *testing.T) {
	k := NewDefaultKeyer()
	state := map[string]string{"locked": "lib"}

	k1 := k.RenderKey("g1", state, RenderKeyOpts{Format: "svg"})
	if k1 != k.RenderKey("g1", state, RenderKeyOpts{Format: "svg"}) {
		t.Error("RenderKey should be deterministic")
	}
	if k1 == k.RenderKey("g1", state, RenderKeyOpts{Format: "png"}) {
		t.Error("Different options should produce different keys")
	}
	if k1 == k.RenderKey("g1", map[string]string{"locked": "app"}, RenderKeyOpts{Format: "svg"}) {
		t.Error("Different state should produce different keys")
	}
	if !strings.HasPrefix(k1, "render:") {
		t.Errorf("RenderKey = %q, want render: prefix", k1)
	}

	scoped := NewScopedKeyer(nil, "prod:")
	if got := scoped.RenderKey("g1", state, RenderKeyOpts{Format: "svg"}); got != "prod:"+k1 {
		t.Errorf("ScopedKeyer.RenderKey = %q, want %q", got, "prod:"+k1)
	}
}

func TestBackoff(t *testing.T) {
	b := Backoff{Attempts: 3, Delay: time.Millisecond}
	ctx := context.Background()
	notFound := errors.New("not found")

	calls := 0
	if err := b.Do(ctx, func() error { calls++; return notFound }); err != notFound || calls != 1 {
		t.Errorf("non-retryable: err = %v, calls = %d", err, calls)
	}

	calls = 0
	err := b.Do(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrNetwork)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retryable: err = %v, calls = %d", err, calls)
	}

	calls = 0
	err = b.Do(ctx, func() error { calls++; return Retryable(ErrNetwork) })
	if !errors.Is(err, ErrNetwork) || calls != 3 {
		t.Errorf("exhausted: err = %v, calls = %d", err, calls)
	}

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if err := b.Do(cctx, func() error { return Retryable(ErrNetwork) }); err != context.Canceled {
		t.Errorf("canceled: err = %v", err)
	}
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
}

type fakeRedis struct {
	data     map[string][]byte
	failures int
}

func (f *fakeRedis) fail() error {
	if f.failures > 0 {
		f.failures--
		return &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")}
	}
	return nil
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if err := f.fail(); err != nil {
		return redis.NewStringResult("", err)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(v), nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	if err := f.fail(); err != nil {
		return redis.NewStatusResult("", err)
	}
	f.data[key] = value.([]byte)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, k := range keys {
		delete(f.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	fake := &fakeRedis{data: map[string][]byte{}}
	c := NewRedisCache(fake, "lg:")
	c.Backoff.Delay = time.Millisecond

	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(missing) = %v, %v", hit, err)
	}

	fake.failures = 1
	if err := c.Set(ctx, "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("Set after one transient failure: %v", err)
	}
	if _, ok := fake.data["lg:k"]; !ok {
		t.Error("key not prefixed")
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v" {
		t.Errorf("Get() = %q, %v, %v", data, hit, err)
	}

	fake.failures = 3
	if _, _, err := c.Get(ctx, "k"); !errors.Is(err, ErrNetwork) {
		t.Errorf("Get() error = %v, want ErrNetwork", err)
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted key returned")
	}
}
