package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	imagededup "github.com/anatolykoptev/go-imagededup"
)

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := color.RGBA{A: 255}
			if x >= w/2 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 95}); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// execute runs the root command with args, feeding stdin, and returns its
// stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestExecute_ResolvesTieFromInput(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	first := filepath.Join(root, "a", "x.jpg")
	second := filepath.Join(root, "b", "x.jpg")
	writeJPEG(t, first, 64, 64)
	writeJPEG(t, second, 64, 64)

	out, err := execute(t, "2\n", "-c", writeConfig(t, ""), "-F", root, "-D")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, "Please choose one of below:") {
		t.Errorf("prompt missing from output:\n%s", out)
	}
	if exists(first) || !exists(second) {
		t.Errorf("first exists = %v, second exists = %v", exists(first), exists(second))
	}
	if !strings.Contains(out, "1 file(s) removed (permanent)") {
		t.Errorf("summary missing from output:\n%s", out)
	}
}

func TestExecute_PriorityListDecides(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	trash := filepath.Join(t.TempDir(), "Trash")
	low := filepath.Join(root, "inbox", "x.jpg")
	high := filepath.Join(root, "album", "x.jpg")
	writeJPEG(t, low, 64, 64)
	writeJPEG(t, high, 64, 64)

	out, err := execute(t, "", "-c", writeConfig(t, ""), "-F", root, "--trash-dir", trash, "-P", "inbox,album")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if exists(low) || !exists(high) {
		t.Errorf("low exists = %v, high exists = %v", exists(low), exists(high))
	}
	if !exists(filepath.Join(trash, "files", "x.jpg")) {
		t.Error("trashed file missing")
	}
	if strings.Contains(out, "Please choose") {
		t.Errorf("unexpected prompt:\n%s", out)
	}
}

func TestExecute_FlagOverridesConfig(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfg := writeConfig(t, `hash = "bogus"`)

	if _, err := execute(t, "", "-c", cfg, "-F", root, "-D"); !errors.Is(err, imagededup.ErrUnknownAlgorithm) {
		t.Errorf("config value: error = %v, want ErrUnknownAlgorithm", err)
	}
	if _, err := execute(t, "", "-c", cfg, "-F", root, "-D", "--hash", "dhash"); err != nil {
		t.Errorf("flag value: %v", err)
	}
}

func TestExecute_StartupErrors(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	file := filepath.Join(root, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want error
	}{
		{"unknown algorithm", []string{"-H", "md5"}, imagededup.ErrUnknownAlgorithm},
		{"unknown match mode", []string{"--priority-match", "regex"}, imagededup.ErrUnknownMatchMode},
		{"missing folder", []string{"-F", filepath.Join(root, "absent")}, os.ErrNotExist},
		{"folder is a file", []string{"-F", file}, nil},
		{"positional argument", []string{"extra"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			args := append([]string{"-c", writeConfig(t, ""), "-D"}, tt.args...)
			_, err := execute(t, "", args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestExecute_LockHeld(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	lock, err := acquireLock(root)
	if err != nil {
		t.Fatalf("acquireLock: %v", err)
	}
	defer lock.Unlock()

	if _, err := execute(t, "", "-c", writeConfig(t, ""), "-F", root, "-D"); !errors.Is(err, errLocked) {
		t.Errorf("error = %v, want errLocked", err)
	}
}

func TestNewResolver_ReadsPipedAnswers(t *testing.T) {
	t.Parallel()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if _, err := w.WriteString("2\n"); err != nil {
		t.Fatal(err)
	}
	w.Close()

	var out bytes.Buffer
	resolver := newResolver(r, &out, nil, false)
	candidates := []imagededup.Record{
		{Path: "/a/x.jpg", Width: 64, Height: 64},
		{Path: "/b/x.jpg", Width: 64, Height: 64},
	}
	got, err := resolver.Choose(candidates)
	if err != nil {
		t.Fatalf("Choose: %v", err)
	}
	if got == nil || got.Path != "/b/x.jpg" {
		t.Errorf("Choose = %v, want /b/x.jpg", got)
	}
}

func TestNewResolver_SkipTies(t *testing.T) {
	t.Parallel()

	if _, ok := newResolver(strings.NewReader("1\n"), os.Stdout, nil, true).(imagededup.SkipResolver); !ok {
		t.Error("skipTies should select SkipResolver")
	}
	if _, ok := newResolver(strings.NewReader(""), os.Stdout, nil, false).(*imagededup.ConsoleResolver); !ok {
		t.Error("default should prompt")
	}
}

func TestExecute_SkipTiesLeavesFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	first := filepath.Join(root, "a", "x.jpg")
	second := filepath.Join(root, "b", "x.jpg")
	writeJPEG(t, first, 64, 64)
	writeJPEG(t, second, 64, 64)

	out, err := execute(t, "2\n", "-c", writeConfig(t, ""), "-F", root, "-D", "--skip-ties")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !exists(first) || !exists(second) {
		t.Error("skipped tie removed a file")
	}
	if strings.Contains(out, "Please choose") {
		t.Errorf("unexpected prompt:\n%s", out)
	}
	if !strings.Contains(out, "1 group(s) skipped") {
		t.Errorf("summary missing skip count:\n%s", out)
	}
}

func TestRenderGroups(t *testing.T) {
	t.Parallel()

	keeper := imagededup.Record{Path: "/p/b.png", Width: 10, Height: 20}
	groups := []imagededup.GroupResult{
		{
			Outcome: &imagededup.Outcome{
				Keeper: &keeper,
				Stage:  imagededup.StageFormat,
				Trail: []imagededup.StageDecision{
					{Stage: imagededup.StageSize, Survivors: 2, Detail: "largest size 10x20"},
					{Stage: imagededup.StageFormat, Survivors: 1, Detail: "png preferred"},
				},
			},
			Disposal: imagededup.DisposalResult{Removed: []string{"/p/a.jpg"}},
		},
		{
			Outcome: &imagededup.Outcome{Stage: imagededup.StageManual},
		},
	}
	got := renderGroups(groups)
	for _, want := range []string{
		"/p/b.png", "format", "10x20", "(skipped)", "manual", "DECISION",
		"size=2 (largest size 10x20); format=1 (png preferred)",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("table missing %q:\n%s", want, got)
		}
	}
}

func TestPrintSummary_ListsDroppedAndFailed(t *testing.T) {
	t.Parallel()

	keeper := imagededup.Record{Path: "/p/b.png", Width: 10, Height: 10}
	report := &imagededup.Report{
		RunID:   "run-1",
		Removal: "trash",
		Groups: []imagededup.GroupResult{{
			Outcome: &imagededup.Outcome{
				Keeper:  &keeper,
				Stage:   imagededup.StageSize,
				Dropped: []string{"/p/gone.jpg"},
			},
			Disposal: imagededup.DisposalResult{
				Failed: []imagededup.RemovalError{{Path: "/p/a.jpg", Err: os.ErrPermission}},
			},
		}},
	}

	var out bytes.Buffer
	printSummary(&out, report)
	for _, want := range []string{
		"Run run-1",
		"unreadable duplicate: /p/gone.jpg",
		"failed: remove /p/a.jpg",
		"0 file(s) removed (trash)",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("summary missing %q:\n%s", want, out.String())
		}
	}
}
