package imagededup

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ErrNoResolver is returned when a group reaches the manual stage and no
// ManualResolver is configured.
var ErrNoResolver = errors.New("no manual resolver configured")

// Stage identifies the cascade step that decided a group.
type Stage int

const (
	StageNone Stage = iota
	StageSize
	StageFormat
	StagePriority
	StageManual
)

func (s Stage) String() string {
	switch s {
	case StageSize:
		return "size"
	case StageFormat:
		return "format"
	case StagePriority:
		return "priority"
	case StageManual:
		return "manual"
	default:
		return "none"
	}
}

// StageDecision is one step of the decision trail: how many candidates
// survived a stage and why.
type StageDecision struct {
	Stage     Stage
	Survivors int
	Detail    string
}

func (d StageDecision) String() string {
	return fmt.Sprintf("%s=%d (%s)", d.Stage, d.Survivors, d.Detail)
}

// Outcome is the result of resolving one group.
type Outcome struct {
	Group   Group
	Records []Record // every record that loaded, in group order
	Keeper  *Record  // nil when the user skipped
	Dispose []Record // records to remove; empty when Keeper is nil
	Stage   Stage    // stage that produced the final decision
	Trail   []StageDecision
	Dropped []string // group paths that could not be loaded
}

// Skipped reports whether the group was left untouched by a manual skip.
func (o *Outcome) Skipped() bool {
	return o.Keeper == nil
}

// Explain renders the decision trail on one line, stages joined by "; ".
func (o *Outcome) Explain() string {
	parts := make([]string, len(o.Trail))
	for i, d := range o.Trail {
		parts[i] = d.String()
	}
	return strings.Join(parts, "; ")
}

// Cascade picks one keeper per duplicate group. Size, format and priority
// are tried in that order; Manual is consulted only when all three tie.
type Cascade struct {
	Priorities PriorityTable
	Manual     ManualResolver
}

// Resolve loads the group's records and runs the cascade over them. It
// returns a nil Outcome when no member of the group could be loaded.
func (c Cascade) Resolve(g Group) (*Outcome, error) {
	records, dropped := loadRecords(g.Paths)
	if len(records) == 0 {
		slog.Debug("imagededup: group has no loadable records", "fingerprint", g.Fingerprint.String(), "paths", len(g.Paths))
		return nil, nil
	}

	keeper, stage, trail, err := c.Select(records)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", g.Fingerprint, err)
	}

	out := &Outcome{
		Group:   g,
		Records: records,
		Keeper:  keeper,
		Stage:   stage,
		Trail:   trail,
		Dropped: dropped,
	}
	if keeper != nil {
		out.Dispose = disposable(*keeper, records)
	}
	return out, nil
}

// Select runs the cascade over already loaded records and returns the keeper
// (nil on manual skip), the deciding stage and the decision trail. Stages
// before the manual one are pure functions of records and c.Priorities.
func (c Cascade) Select(records []Record) (*Record, Stage, []StageDecision, error) {
	if len(records) == 0 {
		return nil, StageNone, nil, nil
	}

	var trail []StageDecision

	survivors := largestSize(records)
	trail = append(trail, StageDecision{
		Stage:     StageSize,
		Survivors: len(survivors),
		Detail:    fmt.Sprintf("largest size %dx%d", survivors[0].Width, survivors[0].Height),
	})
	if len(survivors) == 1 {
		return keep(survivors[0]), StageSize, trail, nil
	}

	survivors = preferPNG(survivors)
	detail := "no png candidate, all kept"
	if isPNG(survivors[0].Path) {
		detail = "png preferred"
	}
	trail = append(trail, StageDecision{Stage: StageFormat, Survivors: len(survivors), Detail: detail})
	if len(survivors) == 1 {
		return keep(survivors[0]), StageFormat, trail, nil
	}

	survivors, rank := c.highestPriority(survivors)
	trail = append(trail, StageDecision{Stage: StagePriority, Survivors: len(survivors), Detail: c.rankDetail(rank)})
	if len(survivors) == 1 {
		return keep(survivors[0]), StagePriority, trail, nil
	}

	if c.Manual == nil {
		return nil, StageManual, trail, ErrNoResolver
	}
	choice, err := c.Manual.Choose(survivors)
	if err != nil {
		return nil, StageManual, trail, fmt.Errorf("manual choice: %w", err)
	}
	if choice == nil {
		trail = append(trail, StageDecision{Stage: StageManual, Detail: "skipped"})
		return nil, StageManual, trail, nil
	}
	if !containsPath(survivors, choice.Path) {
		return nil, StageManual, trail, fmt.Errorf("manual choice %q is not a candidate", choice.Path)
	}
	trail = append(trail, StageDecision{Stage: StageManual, Survivors: 1, Detail: "chosen by user"})
	return keep(*choice), StageManual, trail, nil
}

// largestSize keeps every record whose (width, height) equals the largest
// size. Largest means greatest area, then greatest width.
func largestSize(records []Record) []Record {
	best := records[0]
	for _, r := range records[1:] {
		if r.Area() > best.Area() || (r.Area() == best.Area() && r.Width > best.Width) {
			best = r
		}
	}
	var out []Record
	for _, r := range records {
		if r.SameSize(best) {
			out = append(out, r)
		}
	}
	return out
}

// preferPNG keeps the ".png" records, or all records when there are none.
func preferPNG(records []Record) []Record {
	var pngs []Record
	for _, r := range records {
		if isPNG(r.Path) {
			pngs = append(pngs, r)
		}
	}
	if len(pngs) == 0 {
		return records
	}
	return pngs
}

// highestPriority keeps the records whose directory has the top rank among
// records and returns that rank.
func (c Cascade) highestPriority(records []Record) ([]Record, int) {
	ranks := make([]int, len(records))
	top := Unlisted
	for i, r := range records {
		ranks[i] = c.Priorities.Rank(r.Path)
		if ranks[i] > top {
			top = ranks[i]
		}
	}
	var out []Record
	for i, r := range records {
		if ranks[i] == top {
			out = append(out, r)
		}
	}
	return out, top
}

func (c Cascade) rankDetail(rank int) string {
	if rank == Unlisted {
		return "no listed folder"
	}
	return fmt.Sprintf("folder %q", c.Priorities.entries[rank])
}

// disposable returns the records the executor would remove for keeper.
func disposable(keeper Record, records []Record) []Record {
	var out []Record
	for _, r := range records {
		if !sparedBy(keeper.Path, r.Path) {
			out = append(out, r)
		}
	}
	return out
}

func containsPath(records []Record, path string) bool {
	for _, r := range records {
		if r.Path == path {
			return true
		}
	}
	return false
}

func keep(r Record) *Record {
	return &r
}
