package imagededup

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
)

// Record is an image file as seen by the cascade: its path, pixel
// dimensions, extension and size on disk.
type Record struct {
	Path   string
	Width  int
	Height int
	Format string // file extension as written, e.g. ".png"
	Size   int64  // bytes on disk
}

// Area returns Width * Height.
func (r Record) Area() int {
	return r.Width * r.Height
}

// SameSize reports whether r and o have identical (width, height).
func (r Record) SameSize(o Record) bool {
	return r.Width == o.Width && r.Height == o.Height
}

func (r Record) String() string {
	return fmt.Sprintf("%s (%dx%d, %d bytes)", r.Path, r.Width, r.Height, r.Size)
}

// LoadRecord reads the header of the image at path. Only the image config
// is decoded; the file is closed before returning.
func LoadRecord(path string) (Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return Record{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return Record{}, fmt.Errorf("stat %s: %w", path, err)
	}

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return Record{}, fmt.Errorf("decode %s: %w", path, err)
	}

	return Record{
		Path:   path,
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: filepath.Ext(path),
		Size:   info.Size(),
	}, nil
}

// loadRecords loads every path in order. Paths that no longer exist or do
// not decode are returned in dropped instead of failing the batch.
func loadRecords(paths []string) (records []Record, dropped []string) {
	records = make([]Record, 0, len(paths))
	for _, p := range paths {
		rec, err := LoadRecord(p)
		if err != nil {
			slog.Debug("imagededup: record dropped", "path", p, "error", err.Error())
			dropped = append(dropped, p)
			continue
		}
		records = append(records, rec)
	}
	return records, dropped
}
