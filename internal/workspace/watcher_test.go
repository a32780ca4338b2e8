package workspace

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver()
	ctx := context.Background()

	changes := make(chan *Config, 4)
	w, err := r.Watch(ctx, dir, func(cfg *Config) { changes <- cfg })
	require.NoError(t, err)
	defer w.Close()

	doc := `{"workspace": {"defaultScope": "org.watched"}}`
	require.NoError(t, os.WriteFile(DefaultConfigPath(dir), []byte(doc), 0o644))

	select {
	case cfg := <-changes:
		assert.Equal(t, "org.watched", cfg.Settings().DefaultScope())
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver()

	changes := make(chan *Config, 4)
	w, err := r.Watch(context.Background(), dir, func(cfg *Config) { changes <- cfg })
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(dir+"/notes.txt", []byte("hi"), 0o644))

	select {
	case <-changes:
		t.Fatal("unrelated file triggered a reload")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcherSkipsMalformedThenRecovers(t *testing.T) {
	dir := t.TempDir()
	r := NewResolver()
	ctx := context.Background()

	changes := make(chan *Config, 4)
	w, err := r.Watch(ctx, dir, func(cfg *Config) { changes <- cfg })
	require.NoError(t, err)
	defer w.Close()

	// a write that fails to parse is skipped, not fatal to the watcher
	require.NoError(t, os.WriteFile(DefaultConfigPath(dir), []byte(`{{{`), 0o644))

	select {
	case <-changes:
		t.Fatal("malformed config triggered a reload")
	case <-time.After(300 * time.Millisecond):
	}

	doc := `{"workspace": {"defaultScope": "org.recovered"}}`
	require.NoError(t, os.WriteFile(DefaultConfigPath(dir), []byte(doc), 0o644))

	select {
	case cfg := <-changes:
		assert.Equal(t, "org.recovered", cfg.Settings().DefaultScope())
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not recover after a valid write")
	}
}

func TestWatcherCloseIdempotent(t *testing.T) {
	w, err := NewResolver().Watch(context.Background(), t.TempDir(), func(*Config) {})
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
