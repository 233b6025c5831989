package imagededup

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnknownMatchMode is returned by ParseMatchMode for unsupported names.
var ErrUnknownMatchMode = errors.New("unknown priority match mode")

// MatchMode controls how a priority entry is compared with a directory.
type MatchMode int

const (
	// MatchSubstring matches when the entry appears anywhere in the absolute
	// parent directory, so "ab" matches "/grab/".
	MatchSubstring MatchMode = iota
	// MatchSegment matches only whole path segments, so "ab" matches "/x/ab/"
	// but not "/grab/".
	MatchSegment
)

func (m MatchMode) String() string {
	switch m {
	case MatchSubstring:
		return "substring"
	case MatchSegment:
		return "segment"
	default:
		return fmt.Sprintf("MatchMode(%d)", int(m))
	}
}

// ParseMatchMode maps "substring" or "segment" to a MatchMode.
// An empty name selects MatchSubstring.
func ParseMatchMode(name string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "substring":
		return MatchSubstring, nil
	case "segment":
		return MatchSegment, nil
	default:
		return 0, fmt.Errorf("%w: %q (want substring or segment)", ErrUnknownMatchMode, name)
	}
}

// Unlisted is the rank of a directory no priority entry matches. It is lower
// than every listed rank.
const Unlisted = -1

// PriorityTable ranks directories by an ordered list of folder names.
// Entries declared later outrank entries declared earlier. The zero value
// is an empty table in which every directory is Unlisted.
type PriorityTable struct {
	entries []string
	mode    MatchMode
}

// NewPriorityTable builds a table from folders, lowest priority first.
// Blank entries are ignored.
func NewPriorityTable(folders []string, mode MatchMode) PriorityTable {
	entries := make([]string, 0, len(folders))
	for _, f := range folders {
		if strings.TrimSpace(f) == "" {
			continue
		}
		entries = append(entries, f)
	}
	return PriorityTable{entries: entries, mode: mode}
}

// Entries returns the folder names, lowest priority first.
func (t PriorityTable) Entries() []string {
	return append([]string(nil), t.entries...)
}

// Mode returns the table's match mode.
func (t PriorityTable) Mode() MatchMode {
	return t.mode
}

// Rank returns the priority of the directory containing path: the index of
// the highest matching entry, or Unlisted.
func (t PriorityTable) Rank(path string) int {
	dir := parentDir(path)
	rank := Unlisted
	for i, entry := range t.entries {
		if t.matches(dir, entry) {
			rank = i
		}
	}
	return rank
}

func (t PriorityTable) matches(dir, entry string) bool {
	if t.mode == MatchSegment {
		return containsSegments(dir, entry)
	}
	return strings.Contains(dir, entry)
}

// parentDir returns the absolute directory containing path.
func parentDir(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return filepath.Dir(path)
}

// containsSegments reports whether the segments of entry occur as a
// contiguous run of whole segments in dir.
func containsSegments(dir, entry string) bool {
	want := splitSegments(entry)
	if len(want) == 0 {
		return false
	}
	have := splitSegments(dir)
	for i := 0; i+len(want) <= len(have); i++ {
		match := true
		for j, seg := range want {
			if have[i+j] != seg {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func splitSegments(p string) []string {
	var out []string
	for _, seg := range strings.Split(filepath.ToSlash(p), "/") {
		if seg != "" && seg != "." {
			out = append(out, seg)
		}
	}
	return out
}
