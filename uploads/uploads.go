// Package uploads stores user supplied files on local disk and maps them to
// the public /uploads URL space served by the HTTP engine.
package uploads

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// PublicPrefix is the URL prefix under which Dir is served.
const PublicPrefix = "/uploads/"

var (
	ErrFileType = errors.New("file type not allowed")
	ErrPath     = errors.New("path outside upload directory")
)

// Images lists the extensions accepted for picture uploads.
var Images = []string{".jpeg", ".jpg", ".png"}

type Store struct {
	Dir string
	now func() time.Time
}

func New(dir string) *Store {
	return &Store{Dir: dir, now: time.Now}
}

// Save writes fh to Dir/sub/<unix-millis>-<name> and returns its public path.
// An empty allowed list accepts any extension.
func (s *Store) Save(sub string, fh *multipart.FileHeader, allowed []string) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if len(allowed) > 0 && !contains(allowed, ext) {
		return "", errors.Wrapf(ErrFileType, "%q", ext)
	}

	dir := filepath.Join(s.Dir, filepath.FromSlash(sub))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "mkdir")
	}

	name := fmt.Sprintf("%d-%s", s.now().UnixMilli(), cleanName(fh.Filename, ext))

	src, err := fh.Open()
	if err != nil {
		return "", errors.Wrap(err, "open upload")
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", errors.Wrap(err, "create")
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		_ = os.Remove(dst.Name())
		return "", errors.Wrap(err, "copy")
	}
	if err := dst.Close(); err != nil {
		return "", errors.Wrap(err, "close")
	}

	return PublicPrefix + path.Join(sub, name), nil
}

// Remove deletes the file behind a public path. A file that is already gone
// is not an error.
func (s *Store) Remove(publicPath string) error {
	local, err := s.Local(publicPath)
	if err != nil {
		return err
	}
	if err := os.Remove(local); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "remove")
	}
	return nil
}

// Local resolves a public path to a file under Dir.
func (s *Store) Local(publicPath string) (string, error) {
	rel := strings.TrimPrefix(publicPath, PublicPrefix)
	rel = strings.TrimPrefix(rel, "/")
	clean := path.Clean("/" + rel)
	if rel == "" || clean == "/" {
		return "", ErrPath
	}
	return filepath.Join(s.Dir, filepath.FromSlash(clean)), nil
}

func cleanName(name, ext string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			return r
		case r == ' ':
			return '-'
		}
		return -1
	}, base)
	if strings.TrimSuffix(base, ext) == "" || strings.HasPrefix(base, ".") {
		return uuid.NewString() + ext
	}
	return base
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
