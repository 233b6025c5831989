package imagededup

import "strings"

// ImageSuffixes are the file name endings treated as images. Matching is
// case-sensitive: "photo.JPG" is not picked up.
var ImageSuffixes = []string{
	".jpg", ".jpeg", ".png",
}

// pngSuffix is the format preferred by the format stage.
const pngSuffix = ".png"

// IsImagePath reports whether path ends with one of ImageSuffixes.
func IsImagePath(path string) bool {
	for _, s := range ImageSuffixes {
		if strings.HasSuffix(path, s) {
			return true
		}
	}
	return false
}

// isPNG reports whether path ends with the preferred ".png" suffix.
func isPNG(path string) bool {
	return strings.HasSuffix(path, pngSuffix)
}
