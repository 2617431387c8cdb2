package student_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/minicrm/core"
	"github.com/trezcool/minicrm/core/student"
	"github.com/trezcool/minicrm/storage/database/inmem"
	"github.com/trezcool/minicrm/testutil"
)

func setup(t *testing.T, pageSize int) (*student.Service, student.Repository) {
	db, err := inmemdb.Open()
	require.NoError(t, err)
	repo := inmemdb.NewStudentRepository(db)
	return student.NewService(repo, pageSize), repo
}

func TestNewStudent_Validate(t *testing.T) {
	validate, _ := core.NewValidator()

	ns := student.NewStudent{Name: " Alice ", Email: " alice@test.cd", Phone: " 0999 ", Dept: " Math"}
	require.NoError(t, ns.Validate(validate))
	assert.Equal(t, student.NewStudent{Name: "Alice", Email: "alice@test.cd", Phone: "0999", Dept: "Math"}, ns)

	for _, ns := range []student.NewStudent{{Email: "a@test.cd"}, {Name: "A"}, {Name: "  ", Email: "a@test.cd"}} {
		err := ns.Validate(validate)
		assert.True(t, core.IsValidationError(err), "%+v", ns)
	}
}

func TestParseSort(t *testing.T) {
	assert.Equal(t, student.SortNameAsc, student.ParseSort(" NAME_ASC "))
	assert.Equal(t, student.SortCreatedDesc, student.ParseSort(""))
	assert.Equal(t, student.SortCreatedDesc, student.ParseSort("id; DROP TABLE students"))

	for _, s := range []student.Sort{student.SortCreatedDesc, student.SortCreatedAsc, student.SortNameAsc, student.SortNameDesc} {
		orderings := s.Orderings()
		assert.Equal(t, "id", orderings[len(orderings)-1].Field, "%s ends with the id", s)
	}
}

func TestService_List(t *testing.T) {
	svc, repo := setup(t, 2)
	ctx := context.Background()

	res, err := svc.List(ctx, student.QueryFilter{})
	require.NoError(t, err)
	assert.Equal(t, []student.Student{}, res.Students)
	assert.Equal(t, 1, res.TotalPages)

	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		testutil.CreateStudent(t, repo, fmt.Sprintf("S%d", i), fmt.Sprintf("s%d@test.cd", i), "CS", t0.Add(time.Duration(i)*time.Hour))
	}

	seen := make(map[int64]bool)
	for pg := 1; pg <= 3; pg++ {
		res, err = svc.List(ctx, student.QueryFilter{Page: fmt.Sprint(pg)})
		require.NoError(t, err)
		assert.Equal(t, 5, res.Total)
		assert.Equal(t, 3, res.TotalPages)
		assert.Equal(t, pg, res.Page)
		assert.Equal(t, 2, res.PageSize)
		for _, s := range res.Students {
			assert.False(t, seen[s.ID], "pages do not overlap")
			seen[s.ID] = true
		}
	}
	assert.Len(t, seen, 5)
	assert.Equal(t, []string{"CS"}, res.Depts)
}

func TestService_Delete(t *testing.T) {
	svc, repo := setup(t, 5)
	ctx := context.Background()
	s1 := testutil.CreateStudent(t, repo, "A", "a@test.cd", "")
	s2 := testutil.CreateStudent(t, repo, "B", "b@test.cd", "")
	s3 := testutil.CreateStudent(t, repo, "C", "c@test.cd", "")

	require.NoError(t, svc.Delete(ctx, s1.ID))
	assert.Equal(t, student.ErrNotFound, svc.Delete(ctx, s1.ID))

	_, err := svc.DeleteMany(ctx)
	assert.Equal(t, student.ErrNoSelection, err)

	n, err := svc.DeleteMany(ctx, s1.ID, s2.ID, s3.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestService_ExportToFile(t *testing.T) {
	svc, repo := setup(t, 5)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "exports", "students_export.csv")

	data, err := svc.ExportToFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "id,name,email,phone,dept,created_at\n", string(data))

	s := testutil.CreateStudent(t, repo, `Quote "Q"`, "q@test.cd", "Math", time.Date(2023, 12, 31, 23, 59, 58, 0, time.UTC))
	data, err = svc.ExportToFile(ctx, path)
	require.NoError(t, err)
	want := fmt.Sprintf("id,name,email,phone,dept,created_at\n%d,\"Quote \"\"Q\"\"\",q@test.cd,%s,Math,2023-12-31 23:59:58\n", s.ID, s.Phone)
	assert.Equal(t, want, string(data))

	saved, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want, string(saved), "the previous export is replaced")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".students_export-"), "temp file %s left behind", e.Name())
	}
}

func TestService_MonthlyRegistrations(t *testing.T) {
	svc, repo := setup(t, 5)
	ctx := context.Background()

	months, err := svc.MonthlyRegistrations(ctx)
	require.NoError(t, err)
	assert.Empty(t, months)

	t0 := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 14; i++ {
		testutil.CreateStudent(t, repo, "S", fmt.Sprintf("s%d@test.cd", i), "", t0.AddDate(0, i, 0))
	}
	testutil.CreateStudent(t, repo, "S", "extra@test.cd", "", t0.AddDate(0, 13, 1))

	months, err = svc.MonthlyRegistrations(ctx)
	require.NoError(t, err)
	require.Len(t, months, 12)
	assert.Equal(t, student.MonthCount{Month: "2024-02", Total: 2}, months[0])
	assert.Equal(t, student.MonthCount{Month: "2023-03", Total: 1}, months[11])
}
