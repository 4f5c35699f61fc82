package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

func TestReloadable(t *testing.T) {
	cases := []struct {
		path string
		want bool
	}{
		{"data/scene.yaml", true},
		{"data/ASSETS.YML", true},
		{"scripts/scene.lua", true},
		{"config/gatha.toml", false},
		{"models/crate.glb", false},
		{"README", false},
	}
	for _, c := range cases {
		t.Run(c.path, func(t *testing.T) {
			if got := Reloadable(c.path); got != c.want {
				t.Fatalf("expected %v, got %v", c.want, got)
			}
		})
	}
}

func TestSamePath(t *testing.T) {
	if !SamePath("data/scene.yaml", "./data/../data/scene.yaml") {
		t.Fatalf("equivalent paths should match")
	}
	if SamePath("data/scene.yaml", "data/assets.yaml") || SamePath("", "") {
		t.Fatalf("distinct or empty paths should not match")
	}
}

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	scene := filepath.Join(dir, "scene.yaml")
	if err := os.WriteFile(scene, []byte("entities: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	w, err := NewWatcher(zaptest.NewLogger(t), scene)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(scene, []byte("entities: [{}]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-w.Events:
		if !SamePath(got, scene) {
			t.Fatalf("expected event for %s, got %s", scene, got)
		}
	case err := <-w.Errors:
		t.Fatalf("watcher error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("no event received")
	}
}

func TestWatcherReportsBurstOnceAfterLastWrite(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "scene.lua")
	if err := os.WriteFile(script, []byte("-- v0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher(zaptest.NewLogger(t), script)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	var last time.Time
	for _, src := range []string{"-- v1\n", "-- v2\n", "-- v3\n"} {
		if err := os.WriteFile(script, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
		last = time.Now()
		time.Sleep(Debounce / 5)
	}

	select {
	case got := <-w.Events:
		if !SamePath(got, script) {
			t.Fatalf("expected event for %s, got %s", script, got)
		}
		if waited := time.Since(last); waited < Debounce/2 {
			t.Fatalf("reported %s after the last write, before the file went quiet", waited)
		}
		data, err := os.ReadFile(script)
		if err != nil || string(data) != "-- v3\n" {
			t.Fatalf("reload would read %q, %v", data, err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no event received")
	}

	select {
	case got := <-w.Events:
		t.Fatalf("burst reported twice, extra event for %s", got)
	case <-time.After(3 * Debounce):
	}
}

func TestQuietReturnsOnlyDueFiles(t *testing.T) {
	now := time.Now()
	pending := map[string]time.Time{
		"b.yaml": now.Add(-time.Millisecond),
		"a.lua":  now,
		"c.yaml": now.Add(Debounce),
	}
	got := quiet(pending, now)
	if len(got) != 2 || got[0] != "a.lua" || got[1] != "b.yaml" {
		t.Fatalf("due files %v", got)
	}
	if _, ok := pending["c.yaml"]; !ok || len(pending) != 1 {
		t.Fatalf("pending after flush %v", pending)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	w, err := NewWatcher(zaptest.NewLogger(t), filepath.Join(t.TempDir(), "scene.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if _, ok := <-w.Events; ok {
		t.Fatalf("events channel should be closed")
	}
}
