package imagededup

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
)

// Group is a set of paths sharing one fingerprint, in enumeration order.
type Group struct {
	Fingerprint Fingerprint
	Paths       []string
}

// Index maps fingerprints to the paths that produced them.
type Index struct {
	order   []Fingerprint
	paths   map[Fingerprint][]string
	skipped []string
}

// BuildIndex hashes every path with h. Files that vanish or fail to decode
// are recorded as skipped and do not stop the build. onProgress, when set,
// is called after each file with the number of files processed so far.
// The only error returned is ctx.Err() when the context is cancelled.
func BuildIndex(ctx context.Context, paths []string, h Hasher, onProgress func(done, total int)) (*Index, error) {
	ix := &Index{paths: make(map[Fingerprint][]string)}

	for i, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fp, err := hashFile(p, h)
		if err != nil {
			slog.Debug("imagededup: hash skipped", "path", p, "error", err.Error())
			ix.skipped = append(ix.skipped, p)
		} else {
			ix.add(fp, p)
		}

		if onProgress != nil {
			onProgress(i+1, len(paths))
		}
	}

	return ix, nil
}

func (ix *Index) add(fp Fingerprint, path string) {
	if _, ok := ix.paths[fp]; !ok {
		ix.order = append(ix.order, fp)
	}
	ix.paths[fp] = append(ix.paths[fp], path)
}

// Groups returns every fingerprint with two or more paths, ordered by the
// first time the fingerprint was seen.
func (ix *Index) Groups() []Group {
	var groups []Group
	for _, fp := range ix.order {
		paths := ix.paths[fp]
		if len(paths) < 2 {
			continue
		}
		groups = append(groups, Group{
			Fingerprint: fp,
			Paths:       append([]string(nil), paths...),
		})
	}
	return groups
}

// Hashed returns how many files were fingerprinted.
func (ix *Index) Hashed() int {
	n := 0
	for _, paths := range ix.paths {
		n += len(paths)
	}
	return n
}

// Skipped returns the paths that could not be hashed.
func (ix *Index) Skipped() []string {
	return append([]string(nil), ix.skipped...)
}

func hashFile(path string, h Hasher) (Fingerprint, error) {
	f, err := os.Open(path)
	if err != nil {
		return Fingerprint{}, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("decode: %w", err)
	}
	return h.Fingerprint(img)
}
