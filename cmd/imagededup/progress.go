package main

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
)

// hashProgress renders a single progress tracker for the fingerprinting
// pass. The tracker is created on the first update, once the total is known,
// and the renderer is shut down as soon as the last file is hashed so it
// never draws over the manual prompt.
type hashProgress struct {
	pw      progress.Writer
	tracker *progress.Tracker
	stopped bool
}

func newHashProgress(out io.Writer) *hashProgress {
	pw := progress.NewWriter()
	pw.SetOutputWriter(out)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(30)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.Style().Visibility.ETA = true
	pw.Style().Visibility.Percentage = true
	go pw.Render()
	for !pw.IsRenderInProgress() {
		time.Sleep(time.Millisecond)
	}
	return &hashProgress{pw: pw}
}

func (p *hashProgress) update(done, total int) {
	if p.stopped {
		return
	}
	if p.tracker == nil {
		p.tracker = &progress.Tracker{Message: "Hashing", Total: int64(total), Units: progress.UnitsDefault}
		p.pw.AppendTracker(p.tracker)
	}
	p.tracker.SetValue(int64(done))
	if done >= total {
		p.tracker.MarkAsDone()
		p.stop()
	}
}

// stop flushes the final frame and waits for the renderer to exit. Calls
// after the first are no-ops.
func (p *hashProgress) stop() {
	if p.stopped {
		return
	}
	p.stopped = true
	if p.tracker != nil && !p.tracker.IsDone() {
		p.tracker.MarkAsErrored()
	}
	// Stop is a no-op until Render has set up its context, so repeat it.
	for p.pw.IsRenderInProgress() {
		p.pw.Stop()
		time.Sleep(10 * time.Millisecond)
	}
}
