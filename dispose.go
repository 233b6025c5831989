package imagededup

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNoRemover is returned when disposal is requested without a Remover.
var ErrNoRemover = errors.New("no removal strategy configured")

// Remover takes a single file out of the collection.
type Remover interface {
	Remove(path string) error
}

// RemovalError records a path the Remover failed on.
type RemovalError struct {
	Path string
	Err  error
}

func (e RemovalError) Error() string {
	return fmt.Sprintf("remove %s: %v", e.Path, e.Err)
}

func (e RemovalError) Unwrap() error { return e.Err }

// DisposalResult lists what happened to the non-keepers of a group.
type DisposalResult struct {
	Removed []string
	Failed  []RemovalError
	Freed   int64 // bytes of the removed records
}

// Err joins every removal failure, or returns nil.
func (d DisposalResult) Err() error {
	if len(d.Failed) == 0 {
		return nil
	}
	errs := make([]error, len(d.Failed))
	for i, f := range d.Failed {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// Dispose passes every record of group except the keeper to r. A nil keeper
// means the group was skipped and nothing is removed. A record is spared
// when its path contains the keeper's path. Failures are collected and the
// remaining records are still processed.
func Dispose(keeper *Record, group []Record, r Remover) DisposalResult {
	var res DisposalResult
	if keeper == nil {
		return res
	}

	for _, rec := range group {
		if sparedBy(keeper.Path, rec.Path) {
			continue
		}
		if r == nil {
			res.Failed = append(res.Failed, RemovalError{Path: rec.Path, Err: ErrNoRemover})
			continue
		}
		if err := r.Remove(rec.Path); err != nil {
			slog.Warn("imagededup: remove failed", "path", rec.Path, "keeper", keeper.Path, "error", err.Error())
			res.Failed = append(res.Failed, RemovalError{Path: rec.Path, Err: err})
			continue
		}
		slog.Debug("imagededup: removed", "path", rec.Path, "keeper", keeper.Path)
		res.Removed = append(res.Removed, rec.Path)
		res.Freed += rec.Size
	}
	return res
}

// sparedBy reports whether path is the keeper's own path or textually
// contains it.
func sparedBy(keeperPath, path string) bool {
	return strings.Contains(path, keeperPath)
}
