package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "plan:a"); hit || err != nil {
		t.Fatalf("empty cache: hit=%v err=%v", hit, err)
	}

	payload := []byte(strings.Repeat(`{"center":{"x":1.5,"y":1.5}}`, 50))
	if err := c.Set(ctx, "plan:a", payload, time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, hit, err := c.Get(ctx, "plan:a")
	if err != nil || !hit {
		t.Fatalf("Get after Set: hit=%v err=%v", hit, err)
	}
	if string(got) != string(payload) {
		t.Error("Get returned different data")
	}

	entries, size, err := c.Stats()
	if err != nil || entries != 1 {
		t.Errorf("Stats = %d entries (err %v), want 1", entries, err)
	}
	if size >= int64(len(payload)) {
		t.Errorf("entry is %d bytes on disk, want compressed below %d", size, len(payload))
	}

	if err := c.Delete(ctx, "plan:a"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if err := c.Delete(ctx, "plan:a"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "plan:a"); hit {
		t.Error("entry should be gone after Delete")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry should be a miss")
	}
	if entries, _, _ := c.Stats(); entries != 0 {
		t.Errorf("expired entry should be removed, %d left", entries)
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not zstd"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit=%v err=%v, want silent miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil || n != 3 {
		t.Errorf("Clear = %d, %v; want 3, nil", n, err)
	}
	if entries, _, _ := c.Stats(); entries != 0 {
		t.Errorf("%d entries left after Clear", entries)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*NullCache); !ok {
		t.Errorf("Open(\"\") = %T, want *NullCache", c)
	}

	dir := filepath.Join(t.TempDir(), "plans")
	c, err = Open(ctx, dir)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()
	if fc, ok := c.(*FileCache); !ok || fc.Dir() != dir {
		t.Errorf("Open(dir) = %T, want *FileCache at %s", c, dir)
	}

	if _, err := Open(ctx, "memcached://localhost"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("Open(memcached) error = %v, want ErrUnsupported", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	base := PlanKeyOpts{Unit: "electric-mining-drill", Bounds: [4]int{0, 0, 10, 10}, Density: "dense", Flow: "south"}
	k1 := k.PlanKey("field", base)
	if !strings.HasPrefix(k1, "plan:") {
		t.Errorf("PlanKey should start with plan:, got %s", k1)
	}
	if k1 != k.PlanKey("field", base) {
		t.Error("PlanKey should be deterministic")
	}

	sparse := base
	sparse.Density = "sparse"
	if k1 == k.PlanKey("field", sparse) {
		t.Error("Different PlanKeyOpts should produce different keys")
	}
	if k1 == k.PlanKey("other-field", base) {
		t.Error("Different field hashes should produce different keys")
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "catalog:abc:")
	key := scoped.PlanKey("field", PlanKeyOpts{})
	if !strings.HasPrefix(key, "catalog:abc:plan:") {
		t.Errorf("ScopedKeyer PlanKey should be prefixed: %s", key)
	}

	// Should use DefaultKeyer when inner is nil
	if got := NewScopedKeyer(nil, "p:").PlanKey("field", PlanKeyOpts{}); got != "p:"+NewDefaultKeyer().PlanKey("field", PlanKeyOpts{}) {
		t.Errorf("Unexpected key with nil inner: %s", got)
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrUnavailable)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("wrapped error should unwrap to ErrUnavailable")
	}
	if err.Error() != ErrUnavailable.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}
	if IsRetryable(ErrUnsupported) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	defer func(d time.Duration) { retryDelay = d }(retryDelay)
	retryDelay = time.Millisecond

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("success: err=%v calls=%d, want nil and 1", err, calls)
	}

	// Non-retryable error stops immediately
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return ErrUnsupported
	})
	if err != ErrUnsupported || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	// Retryable error triggers retries
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry: err=%v calls=%d, want nil and 2", err, calls)
	}

	// Gives up after three attempts
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(ErrUnavailable)
	})
	if !errors.Is(err, ErrUnavailable) || calls != 3 {
		t.Errorf("exhausted: err=%v calls=%d, want ErrUnavailable and 3", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
