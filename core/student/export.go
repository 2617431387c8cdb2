package student

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

const exportTimeLayout = "2006-01-02 15:04:05"

var exportHeader = []string{"id", "name", "email", "phone", "dept", "created_at"}

// Export writes every student, newest first, as CSV.
func (svc *Service) Export(ctx context.Context, w io.Writer) error {
	students, err := svc.repo.QueryAllStudents(ctx)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}

	cw := csv.NewWriter(w)
	if err = cw.Write(exportHeader); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	for _, s := range students {
		rec := []string{
			strconv.FormatInt(s.ID, 10),
			s.Name,
			s.Email,
			s.Phone,
			s.Dept,
			s.CreatedAt.Format(exportTimeLayout),
		}
		if err = cw.Write(rec); err != nil {
			return errors.Wrap(err, "writing csv record")
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing csv")
}

// ExportToFile exports to path, replacing the previous export, and returns the exported bytes.
// Concurrent exports share path: the last one to finish wins.
func (svc *Service) ExportToFile(ctx context.Context, path string) ([]byte, error) {
	var buf bytes.Buffer
	if err := svc.Export(ctx, &buf); err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating export directory")
	}
	tmp, err := os.CreateTemp(dir, ".students_export-*.csv")
	if err != nil {
		return nil, errors.Wrap(err, "creating export file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return nil, errors.Wrap(err, "writing export file")
	}
	if err = tmp.Close(); err != nil {
		return nil, errors.Wrap(err, "closing export file")
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return nil, errors.Wrap(err, "replacing export file")
	}
	return buf.Bytes(), nil
}
