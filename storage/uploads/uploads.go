// Package uploads stores product images on the local filesystem.
package uploads

import (
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

var (
	// errors
	ErrInvalidExtension = errors.New("invalid image type")
	ErrInvalidFilename  = errors.New("invalid file name")
)

type Store struct {
	dir       string
	urlPrefix string
	allowed   map[string]bool
}

// NewStore saves files under dir and records them as urlPrefix/<name>.
// Extensions are compared without case and without the leading dot.
func NewStore(dir, urlPrefix string, allowedExts []string) *Store {
	allowed := make(map[string]bool, len(allowedExts))
	for _, ext := range allowedExts {
		allowed[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))] = true
	}
	return &Store{dir: dir, urlPrefix: strings.Trim(urlPrefix, "/"), allowed: allowed}
}

func (st *Store) Dir() string { return st.dir }

// Allowed reports whether filename has an allow-listed extension.
func (st *Store) Allowed(filename string) bool {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	return ext != "" && st.allowed[ext]
}

// SanitizeFilename keeps an ASCII base name made of letters, digits, '.', '_' and '-'.
// Path separators and whitespace become underscores; leading dots and underscores are dropped.
func SanitizeFilename(filename string) string {
	filename = strings.ReplaceAll(filename, "\\", "/")
	filename = path.Base(filename)

	var b strings.Builder
	for _, r := range filename {
		switch {
		case r > unicode.MaxASCII:
			continue
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r), r == '/':
			b.WriteByte('_')
		}
	}
	name := strings.TrimLeft(b.String(), "._")
	if name == "." || name == ".." {
		return ""
	}
	return name
}

// Save writes the uploaded file and returns the path recorded on the product.
func (st *Store) Save(fh *multipart.FileHeader) (null.String, error) {
	if !st.Allowed(fh.Filename) {
		return null.String{}, ErrInvalidExtension
	}
	name := SanitizeFilename(fh.Filename)
	if name == "" || !st.Allowed(name) {
		return null.String{}, ErrInvalidFilename
	}

	src, err := fh.Open()
	if err != nil {
		return null.String{}, errors.Wrap(err, "opening upload")
	}
	defer func() { _ = src.Close() }()

	if err = st.write(name, src); err != nil {
		return null.String{}, err
	}
	return null.StringFrom(path.Join(st.urlPrefix, name)), nil
}

// write copies src to dir/name. A partly written file is removed.
func (st *Store) write(name string, src io.Reader) (err error) {
	if err = os.MkdirAll(st.dir, 0o755); err != nil {
		return errors.Wrap(err, "creating upload directory")
	}
	dst, err := os.Create(filepath.Join(st.dir, name))
	if err != nil {
		return errors.Wrap(err, "creating upload file")
	}
	defer func() {
		if err != nil {
			_ = os.Remove(dst.Name())
		}
	}()

	if _, err = io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return errors.Wrap(err, "writing upload file")
	}
	return errors.Wrap(dst.Close(), "closing upload file")
}

// Remove deletes the file of a path returned by Save. Unknown files are ignored.
func (st *Store) Remove(image null.String) error {
	if !image.Valid {
		return nil
	}
	name := SanitizeFilename(path.Base(image.String))
	if name == "" {
		return nil
	}
	if err := os.Remove(filepath.Join(st.dir, name)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing upload file")
	}
	return nil
}
