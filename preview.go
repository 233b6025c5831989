package imagededup

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Previewer shows a single candidate to the user.
type Previewer interface {
	Preview(r Record) error
}

// CommandPreviewer opens each candidate in an external viewer, e.g. "feh"
// or "xdg-open". The viewer is started with the path as its last argument
// and is not waited on.
type CommandPreviewer struct {
	Command string
	Args    []string
}

// NewCommandPreviewer splits a command line such as "feh -." on spaces.
func NewCommandPreviewer(commandLine string) (CommandPreviewer, error) {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return CommandPreviewer{}, errors.New("empty viewer command")
	}
	return CommandPreviewer{Command: fields[0], Args: fields[1:]}, nil
}

// Preview starts the viewer for r.
func (p CommandPreviewer) Preview(r Record) error {
	args := append(append([]string(nil), p.Args...), r.Path)
	cmd := exec.Command(p.Command, args...) //nolint:gosec // viewer command comes from the user's own config
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start viewer %q: %w", p.Command, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// DetailPreviewer prints what is known about a candidate: dimensions,
// format, size and EXIF capture info.
type DetailPreviewer struct {
	Out io.Writer
}

// Preview writes r's details to p.Out.
func (p DetailPreviewer) Preview(r Record) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.Path)
	fmt.Fprintf(&b, "  size:   %dx%d %s, %s\n", r.Width, r.Height, strings.TrimPrefix(r.Format, "."), formatBytes(r.Size))
	if info := ReadCaptureInfo(r.Path); info != nil {
		if info.Taken != "" {
			fmt.Fprintf(&b, "  taken:  %s\n", info.Taken)
		}
		if cam := info.Camera(); cam != "" {
			fmt.Fprintf(&b, "  camera: %s\n", cam)
		}
	}
	_, err := io.WriteString(p.Out, b.String())
	return err
}

// formatBytes renders n with a binary unit, e.g. "1.5 KiB".
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
