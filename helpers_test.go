package imagededup

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// solidImage returns a w x h image filled with c.
func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

// makeJPEG returns a minimal valid JPEG of the given dimensions.
func makeJPEG(w, h int) []byte {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solidImage(w, h, color.RGBA{R: 100, G: 149, B: 237, A: 255}), nil); err != nil {
		panic("makeJPEG: " + err.Error())
	}
	return buf.Bytes()
}

// makePNG returns a minimal valid PNG of the given dimensions.
func makePNG(w, h int) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, solidImage(w, h, color.RGBA{R: 100, G: 149, B: 237, A: 255})); err != nil {
		panic("makePNG: " + err.Error())
	}
	return buf.Bytes()
}

// writeImage writes a w x h image to dir/rel, picking the encoder from the
// extension, and returns the absolute path.
func writeImage(t *testing.T, dir, rel string, w, h int) string {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	data := makeJPEG(w, h)
	if filepath.Ext(path) == ".png" {
		data = makePNG(w, h)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// writeEncoded writes img to path as PNG or JPEG depending on the extension.
func writeEncoded(t *testing.T, path string, img image.Image) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	var buf bytes.Buffer
	var err error
	if filepath.Ext(path) == ".png" {
		err = png.Encode(&buf, img)
	} else {
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95})
	}
	if err != nil {
		t.Fatalf("encode %s: %v", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
