package imagededup

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// ManualResolver asks a human to pick the keeper among candidates the
// cascade could not separate. A nil Record with a nil error means skip:
// the group is left untouched.
type ManualResolver interface {
	Choose(candidates []Record) (*Record, error)
}

// ConsoleResolver prompts on a text stream. Candidates are listed with
// stable 1-based indices; 0 skips; any larger number previews every
// candidate and asks again.
type ConsoleResolver struct {
	in        *bufio.Reader
	out       io.Writer
	previewer Previewer
}

// NewConsoleResolver reads answers from in and writes prompts to out.
// A nil previewer prints candidate details to out.
func NewConsoleResolver(in io.Reader, out io.Writer, previewer Previewer) *ConsoleResolver {
	if previewer == nil {
		previewer = DetailPreviewer{Out: out}
	}
	return &ConsoleResolver{in: bufio.NewReader(in), out: out, previewer: previewer}
}

// Choose blocks until the user selects a candidate or skips. End of input
// counts as skip.
func (c *ConsoleResolver) Choose(candidates []Record) (*Record, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	fmt.Fprintln(c.out, "Unable to choose a duplicate automatically.")
	fmt.Fprintln(c.out, "Please choose one of below:")

	for {
		for i, r := range candidates {
			fmt.Fprintf(c.out, "%d: %s (%dx%d, %s)\n", i+1, r.Path, r.Width, r.Height, formatBytes(r.Size))
		}
		fmt.Fprintf(c.out, "Enter %d to preview each image, or 0 to skip: ", len(candidates)+1)

		line, err := c.in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && strings.TrimSpace(line) != "") {
			fmt.Fprintln(c.out)
			if errors.Is(err, io.EOF) {
				slog.Debug("imagededup: input closed, skipping group", "candidates", len(candidates))
				return nil, nil
			}
			return nil, fmt.Errorf("read choice: %w", err)
		}

		answer := strings.TrimSpace(line)
		n, err := strconv.Atoi(answer)
		switch {
		case err != nil || n < 0:
			fmt.Fprintf(c.out, "Invalid selection %q.\n", answer)
		case n == 0:
			return nil, nil
		case n <= len(candidates):
			return keep(candidates[n-1]), nil
		default:
			c.previewAll(candidates)
		}
	}
}

func (c *ConsoleResolver) previewAll(candidates []Record) {
	for _, r := range candidates {
		if err := c.previewer.Preview(r); err != nil {
			slog.Warn("imagededup: preview failed", "path", r.Path, "error", err.Error())
		}
	}
}

// SkipResolver skips every ambiguous group. It stands in for the console
// when there is nobody to ask.
type SkipResolver struct{}

// Choose always skips.
func (SkipResolver) Choose(candidates []Record) (*Record, error) {
	slog.Warn("imagededup: manual choice needed but input is not interactive, group skipped", "candidates", len(candidates))
	return nil, nil
}
