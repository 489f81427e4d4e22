package commands

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/ginga924/madt4001-sql/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_Relevant(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	single := testutil.WriteString(t, t.TempDir(), "single.csv", "id\n1\n")

	w, err := NewWatcher([]string{dir, single}, testutil.NewTestLogger(t), func() {})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	assert.True(t, w.relevant(filepath.Join(dir, "new.csv")))
	assert.True(t, w.relevant(filepath.Join(dir, "new.xlsx")))
	assert.False(t, w.relevant(filepath.Join(dir, "notes.txt")))
	assert.True(t, w.relevant(single))
	assert.False(t, w.relevant(filepath.Join(filepath.Dir(single), "other.csv")))
}

func TestWatcher_MissingPath(t *testing.T) {
	t.Parallel()

	_, err := NewWatcher([]string{filepath.Join(t.TempDir(), "gone", "x.csv")}, testutil.NewTestLogger(t), func() {})
	assert.Error(t, err)
}

func TestWatcher_DebouncedChange(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	changed := make(chan struct{}, 8)

	w, err := NewWatcher([]string{dir}, testutil.NewTestLogger(t), func() {
		changed <- struct{}{}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Run(ctx)

	testutil.WriteString(t, dir, "a.csv", "id\n1\n")
	testutil.WriteString(t, dir, "b.csv", "id\n2\n")

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after data change")
	}
}
