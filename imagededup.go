// Package imagededup finds perceptually identical images under a directory
// and keeps one file per group of duplicates.
//
// Duplicates are grouped by a perceptual fingerprint, then a fixed cascade
// picks the keeper: the largest image wins, then a PNG, then the file in
// the highest priority folder. When all three tie, a ManualResolver asks a
// human. Every other member of the group is handed to a Remover.
package imagededup

import (
	"log/slog"

	"github.com/google/uuid"
)

// Config holds all dependencies injected by the caller.
type Config struct {
	Enumerator Enumerator     // nil = GlobEnumerator
	Hasher     Hasher         // nil = AlgoWavelet
	Priorities PriorityTable  // zero value = every folder unlisted
	Remover    Remover        // required: TrashRemover or PermanentRemover
	Manual     ManualResolver // required: consulted only on full ties

	// RunID tags the run's log lines and report; empty = random UUID.
	RunID string

	// Flat limits the scan to the root directory itself.
	Flat bool

	// Optional callbacks for progress and logging.
	OnProgress func(done, total int) // after each file is fingerprinted
	OnResolved func(GroupResult)     // after each group is disposed
}

// defaults fills zero-value fields with sensible defaults.
func (c *Config) defaults() {
	if c.Enumerator == nil {
		c.Enumerator = GlobEnumerator{}
	}
	if c.RunID == "" {
		c.RunID = uuid.NewString()
	}
	if c.Hasher == nil {
		c.Hasher = AlgoWavelet
		slog.Debug("imagededup: no hasher configured, using default", "algorithm", AlgoWavelet.String())
	}
}
