package main

import (
	"context"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/Codewiz19/legallens/internal/tuitest"
)

func TestInputScreenRendersHero(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping PTY integration test in short mode")
	}
	t.Parallel()

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)
	cache := t.TempDir()

	rec, err := tuitest.Run(context.Background(), tuitest.Options{
		Command: []string{binary, "--no-alt-screen"},
		Dir:     cmdDir,
		Env: []string{
			"LEGALLENS_CACHE_DIR=" + cache,
			"LEGALLENS_CONFIG=" + filepath.Join(cache, "missing.toml"),
		},
		Cols: 100,
		Rows: 32,
		Script: []tuitest.Step{
			{Wait: time.Second},
			{Send: tuitest.KeyCtrlC},
		},
		Timeout:        8 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}

	for _, want := range []string{"LegalLens", "Document", "Enter to analyze"} {
		if !rec.Contains(want) {
			frame, _ := rec.FinalFrame()
			t.Fatalf("missing %q in any frame; final frame:\n%s", want, frame.Plain)
		}
	}
}

func TestBadPathShowsErrorAndStaysInteractive(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping PTY integration test in short mode")
	}
	t.Parallel()

	cmdDir := moduleDir(t)
	binary := buildBinary(t, cmdDir)
	cache := t.TempDir()

	rec, err := tuitest.Run(context.Background(), tuitest.Options{
		Command: []string{binary, "--no-alt-screen"},
		Dir:     cmdDir,
		Env: []string{
			"LEGALLENS_CACHE_DIR=" + cache,
			"LEGALLENS_CONFIG=" + filepath.Join(cache, "missing.toml"),
			"LEGALLENS_API_BASE=http://127.0.0.1:1", // nothing listens here
		},
		Cols: 100,
		Rows: 32,
		Script: []tuitest.Step{
			{Wait: time.Second, Send: []byte("/no/such/file.pdf")},
			{Wait: 200 * time.Millisecond, Send: tuitest.KeyEnter},
			{Wait: 2 * time.Second, Send: tuitest.KeyCtrlC},
		},
		Timeout:        10 * time.Second,
		AllowInterrupt: true,
	})
	if err != nil {
		t.Fatalf("run CLI: %v", err)
	}

	if !rec.Contains("no/such/file.pdf") {
		t.Fatal("typed path never echoed")
	}
	if !rec.Contains("try again") && !rec.Contains("Fix the problem") {
		frame, _ := rec.FinalFrame()
		t.Fatalf("expected a recoverable error prompt; final frame:\n%s", frame.Plain)
	}
}

func moduleDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime caller unavailable")
	}
	return filepath.Dir(file)
}

func buildBinary(t *testing.T, cmdDir string) string {
	t.Helper()
	name := "legallens-integration"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	binPath := filepath.Join(t.TempDir(), name)
	cmd := exec.Command("go", "build", "-o", binPath, ".")
	cmd.Dir = cmdDir
	if output, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("build CLI: %v\n%s", err, output)
	}
	return binPath
}
