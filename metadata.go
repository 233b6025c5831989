package imagededup

import (
	"os"
	"strings"

	"github.com/bep/imagemeta"
)

// CaptureInfo holds the EXIF fields shown when a user previews a duplicate:
// when the picture was taken and with which camera.
type CaptureInfo struct {
	Taken string // EXIF DateTimeOriginal, as stored ("2006:01:02 15:04:05")
	Make  string
	Model string
}

// Camera returns "Make Model" with empty parts dropped.
func (c *CaptureInfo) Camera() string {
	if c == nil {
		return ""
	}
	return strings.TrimSpace(c.Make + " " + c.Model)
}

// wantedEXIFTags are the EXIF tag names ReadCaptureInfo looks for.
var wantedEXIFTags = map[string]bool{
	"DateTimeOriginal": true,
	"Make":             true,
	"Model":            true,
}

// ReadCaptureInfo parses EXIF capture fields from the image at path.
// Returns nil when the file cannot be read or carries none of the fields.
func ReadCaptureInfo(path string) *CaptureInfo {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	info := &CaptureInfo{}
	found := false

	_, err = imagemeta.Decode(imagemeta.Options{
		R:       f,
		Sources: imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return ti.Source == imagemeta.EXIF && wantedEXIFTags[ti.Tag]
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			handleEXIFTag(info, ti, &found)
			return nil
		},
	})

	if err != nil || !found {
		return nil
	}
	return info
}

// handleEXIFTag sets the CaptureInfo field for an EXIF tag.
func handleEXIFTag(info *CaptureInfo, ti imagemeta.TagInfo, found *bool) {
	s := strings.TrimSpace(tagValueString(ti.Value))
	if s == "" {
		return
	}

	switch ti.Tag {
	case "DateTimeOriginal":
		info.Taken = s
	case "Make":
		info.Make = s
	case "Model":
		info.Model = s
	default:
		return
	}

	*found = true
}

// tagValueString extracts a string from a tag value, which may arrive as a
// string or a list of strings.
func tagValueString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case []string:
		if len(val) > 0 {
			return val[0]
		}
		return ""
	case []any:
		if len(val) > 0 {
			if s, ok := val[0].(string); ok {
				return s
			}
		}
		return ""
	default:
		return ""
	}
}
