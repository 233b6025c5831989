package imagededup

import (
	"context"
	"fmt"
	"log/slog"
)

// GroupResult pairs a resolved group with what happened on disk.
type GroupResult struct {
	Outcome  *Outcome
	Disposal DisposalResult
}

// Report summarises a run.
type Report struct {
	RunID      string
	Root       string
	Algorithm  string   // hasher name, when it has one
	Removal    string   // remover name, when it has one
	Scanned    int      // image files found
	Hashed     int      // files fingerprinted
	Unreadable []string // files that could not be fingerprinted
	Groups     []GroupResult
	Vanished   int // duplicate groups with no loadable member left
}

// Removed returns how many files were removed across all groups.
func (r *Report) Removed() int {
	n := 0
	for _, g := range r.Groups {
		n += len(g.Disposal.Removed)
	}
	return n
}

// Freed returns the bytes removed across all groups.
func (r *Report) Freed() int64 {
	var n int64
	for _, g := range r.Groups {
		n += g.Disposal.Freed
	}
	return n
}

// SkippedGroups returns how many groups the user chose to leave alone.
func (r *Report) SkippedGroups() int {
	n := 0
	for _, g := range r.Groups {
		if g.Outcome.Skipped() {
			n++
		}
	}
	return n
}

// Dropped returns the group members that could not be loaded when their
// group was resolved, in group order.
func (r *Report) Dropped() []string {
	var out []string
	for _, g := range r.Groups {
		out = append(out, g.Outcome.Dropped...)
	}
	return out
}

// Failures returns every removal error of the run.
func (r *Report) Failures() []RemovalError {
	var out []RemovalError
	for _, g := range r.Groups {
		out = append(out, g.Disposal.Failed...)
	}
	return out
}

// Run scans root, groups duplicates and resolves them one group at a time:
// each group is fully decided and disposed before the next is looked at.
// Cancelling ctx stops the run between files or groups; removals already
// made stay made. The partial report is returned alongside any error.
func (c *Config) Run(ctx context.Context, root string) (*Report, error) {
	c.defaults()

	if c.Remover == nil {
		return nil, ErrNoRemover
	}
	if c.Manual == nil {
		return nil, ErrNoResolver
	}

	paths, err := c.Enumerator.ListImages(root, !c.Flat)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	report := &Report{
		RunID:     c.RunID,
		Root:      root,
		Algorithm: nameOf(c.Hasher),
		Removal:   nameOf(c.Remover),
		Scanned:   len(paths),
	}
	slog.Info("imagededup: scanning", "root", root, "images", len(paths), "recursive", !c.Flat)

	ix, err := BuildIndex(ctx, paths, c.Hasher, c.OnProgress)
	if err != nil {
		return report, err
	}
	report.Hashed = ix.Hashed()
	report.Unreadable = ix.Skipped()

	groups := ix.Groups()
	slog.Info("imagededup: fingerprinted", "hashed", report.Hashed, "unreadable", len(report.Unreadable), "groups", len(groups))

	cascade := Cascade{Priorities: c.Priorities, Manual: c.Manual}
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		outcome, err := cascade.Resolve(g)
		if err != nil {
			return report, err
		}
		if outcome == nil {
			report.Vanished++
			continue
		}

		res := GroupResult{
			Outcome:  outcome,
			Disposal: Dispose(outcome.Keeper, outcome.Records, c.Remover),
		}
		report.Groups = append(report.Groups, res)
		logResolved(res)

		if c.OnResolved != nil {
			c.OnResolved(res)
		}
	}

	return report, nil
}

func nameOf(v any) string {
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", v)
}

func logResolved(res GroupResult) {
	o := res.Outcome
	if len(o.Dropped) > 0 {
		slog.Info("imagededup: group members unreadable", "fingerprint", o.Group.Fingerprint.String(), "dropped", o.Dropped)
	}
	trail := make([]any, 0, len(o.Trail))
	for _, d := range o.Trail {
		trail = append(trail, slog.Group(d.Stage.String(), "survivors", d.Survivors, "detail", d.Detail))
	}
	slog.Debug("imagededup: decision trail", "fingerprint", o.Group.Fingerprint.String(), slog.Group("trail", trail...))

	if o.Skipped() {
		slog.Info("imagededup: group skipped", "fingerprint", o.Group.Fingerprint.String(), "members", len(o.Records))
		return
	}
	slog.Info("imagededup: group resolved",
		"fingerprint", o.Group.Fingerprint.String(),
		"keeper", o.Keeper.Path,
		"stage", o.Stage.String(),
		"removed", len(res.Disposal.Removed),
		"failed", len(res.Disposal.Failed),
	)
}
