package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"

	imagededup "github.com/anatolykoptev/go-imagededup"
)

// run builds the library configuration from opts and performs one
// deduplication pass over opts.Folder.
func run(ctx context.Context, opts options, in io.Reader, out, errOut io.Writer) error {
	runID := uuid.NewString()
	restore := installLogger(errOut, opts.Verbose, runID)
	defer restore()

	algo, err := imagededup.ParseAlgorithm(opts.Hash)
	if err != nil {
		return err
	}
	mode, err := imagededup.ParseMatchMode(opts.PriorityMatch)
	if err != nil {
		return err
	}

	root, err := expandPath(opts.Folder)
	if err != nil {
		return err
	}
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("scan folder: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("scan folder: %s is not a directory", root)
	}

	remover, err := newRemover(opts)
	if err != nil {
		return err
	}
	previewer, err := newPreviewer(opts, out)
	if err != nil {
		return err
	}

	lock, err := acquireLock(root)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("imagededup: release lock", "path", lock.Path(), "error", err.Error())
		}
	}()

	cfg := &imagededup.Config{
		Hasher:     algo,
		Priorities: imagededup.NewPriorityTable(opts.PriorityList, mode),
		Remover:    remover,
		Manual:     newResolver(in, out, previewer, opts.SkipTies),
		RunID:      runID,
		Flat:       opts.NonRecursive,
	}
	if isTerminal(errOut) {
		bar := newHashProgress(errOut)
		cfg.OnProgress = bar.update
		defer bar.stop()
	}

	report, runErr := cfg.Run(ctx, root)
	if report != nil {
		printSummary(out, report)
	}
	if runErr != nil {
		return runErr
	}
	if failed := len(report.Failures()); failed > 0 {
		return fmt.Errorf("%d file(s) could not be removed", failed)
	}
	return nil
}

func installLogger(w io.Writer, verbose bool, runID string) func() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	prev := slog.Default()
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler).With("run_id", runID))
	return func() { slog.SetDefault(prev) }
}

func newRemover(opts options) (imagededup.Remover, error) {
	if opts.PermanentDelete {
		return imagededup.PermanentRemover{}, nil
	}
	dir := opts.TrashDir
	if dir == "" {
		var err error
		if dir, err = imagededup.DefaultTrashDir(); err != nil {
			return nil, err
		}
	}
	dir, err := expandPath(dir)
	if err != nil {
		return nil, err
	}
	return imagededup.TrashRemover{Dir: filepath.Clean(dir)}, nil
}

func newPreviewer(opts options, out io.Writer) (imagededup.Previewer, error) {
	if opts.Viewer == "" {
		return imagededup.DetailPreviewer{Out: out}, nil
	}
	p, err := imagededup.NewCommandPreviewer(opts.Viewer)
	if err != nil {
		return nil, fmt.Errorf("viewer: %w", err)
	}
	return p, nil
}

// newResolver prompts on in, which may be a terminal or a pipe of answers.
// skipTies leaves every full tie untouched without asking.
func newResolver(in io.Reader, out io.Writer, previewer imagededup.Previewer, skipTies bool) imagededup.ManualResolver {
	if skipTies {
		return imagededup.SkipResolver{}
	}
	return imagededup.NewConsoleResolver(in, out, previewer)
}

func isTerminal(w any) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
