package imagededup

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// renameFunc is swapped in tests to simulate cross-device moves.
var renameFunc = os.Rename

// PermanentRemover deletes files outright.
type PermanentRemover struct{}

// Remove deletes path.
func (PermanentRemover) Remove(path string) error {
	return os.Remove(path)
}

func (PermanentRemover) String() string { return "permanent" }

// TrashRemover moves files into a freedesktop.org style trash directory:
// the file goes to Dir/files/<name> and a Dir/info/<name>.trashinfo entry
// records where it came from, so desktop file managers can restore it.
type TrashRemover struct {
	Dir string
	Now func() time.Time // defaults to time.Now
}

func (TrashRemover) String() string { return "trash" }

// DefaultTrashDir returns $XDG_DATA_HOME/Trash, falling back to
// ~/.local/share/Trash.
func DefaultTrashDir() (string, error) {
	if base := strings.TrimSpace(os.Getenv("XDG_DATA_HOME")); base != "" {
		return filepath.Join(base, "Trash"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "Trash"), nil
}

const trashInfoTimeLayout = "2006-01-02T15:04:05"

// Remove moves path into the trash.
func (t TrashRemover) Remove(path string) error {
	if t.Dir == "" {
		return errors.New("trash directory not set")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", path, err)
	}
	if _, err := os.Lstat(abs); err != nil {
		return err
	}

	filesDir := filepath.Join(t.Dir, "files")
	infoDir := filepath.Join(t.Dir, "info")
	for _, d := range []string{filesDir, infoDir} {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return fmt.Errorf("create trash directory: %w", err)
		}
	}

	now := time.Now
	if t.Now != nil {
		now = t.Now
	}

	name, infoPath, err := reserveTrashName(infoDir, filesDir, filepath.Base(abs), abs, now())
	if err != nil {
		return err
	}

	dst := filepath.Join(filesDir, name)
	if err := moveFile(abs, dst); err != nil {
		_ = os.Remove(infoPath)
		return fmt.Errorf("move to trash: %w", err)
	}
	return nil
}

// reserveTrashName claims a free name by creating its .trashinfo file
// exclusively. A name is taken when either its info entry or its file
// exists. Collisions get a numeric suffix: a.jpg, a.1.jpg, a.2.jpg.
func reserveTrashName(infoDir, filesDir, base, origin string, deleted time.Time) (string, string, error) {
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	content := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		escapeTrashPath(origin), deleted.Format(trashInfoTimeLayout))

	for i := 0; ; i++ {
		name := base
		if i > 0 {
			name = stem + "." + strconv.Itoa(i) + ext
		}
		if _, err := os.Lstat(filepath.Join(filesDir, name)); err == nil {
			continue
		}
		infoPath := filepath.Join(infoDir, name+".trashinfo")
		f, err := os.OpenFile(infoPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", "", fmt.Errorf("create trash info: %w", err)
		}
		_, werr := io.WriteString(f, content)
		cerr := f.Close()
		if err := errors.Join(werr, cerr); err != nil {
			_ = os.Remove(infoPath)
			return "", "", fmt.Errorf("write trash info: %w", err)
		}
		return name, infoPath, nil
	}
}

// escapeTrashPath URL-escapes every segment of an absolute path and keeps
// the separators.
func escapeTrashPath(p string) string {
	segs := strings.Split(filepath.ToSlash(p), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

// moveFile renames src to dst, copying across filesystems when needed.
func moveFile(src, dst string) error {
	err := renameFunc(src, dst)
	if err == nil || !isCrossDevice(err) {
		return err
	}
	if err := copyFile(src, dst); err != nil {
		_ = os.Remove(dst)
		return err
	}
	return os.Remove(src)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Sync(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
