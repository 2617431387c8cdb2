package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/minicrm/core"
	"github.com/trezcool/minicrm/core/student"
	"github.com/trezcool/minicrm/storage/database"
)

const studentColumns = "id, name, email, phone, dept, created_at"

type studentRepository struct {
	db core.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db core.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	id, err := database.Insert(
		ctx, repo.db,
		"INSERT INTO students (name, email, phone, dept, created_at) VALUES (?, ?, ?, ?, ?)",
		s.Name, s.Email, s.Phone, s.Dept, s.CreatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	s.ID = id
	return s, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int64) (student.Student, error) {
	var s student.Student
	err := database.Get(ctx, repo.db, &s, "SELECT "+studentColumns+" FROM students WHERE id = ?", id)
	if err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound, "getting student by id")
	}
	return s, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, s student.Student) (student.Student, error) {
	n, err := database.Exec(
		ctx, repo.db,
		"UPDATE students SET name = ?, email = ?, phone = ?, dept = ? WHERE id = ?",
		s.Name, s.Email, s.Phone, s.Dept, s.ID,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudentByID(ctx, s.ID)
}

func (repo *studentRepository) DeleteStudentsByID(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := database.ExecIn(ctx, repo.db, "DELETE FROM students WHERE id IN (?)", ids)
	return n, errors.Wrap(err, "deleting students")
}

func (repo *studentRepository) filter(qf student.QueryFilter) *filter {
	f := new(filter)
	if qf.Search != "" {
		like := database.DialectOf(repo.db).Like()
		pattern := database.LikePattern(qf.Search)
		f.add("(name "+like+" ? OR email "+like+" ?)", pattern, pattern)
	}
	if qf.Dept != "" {
		f.add("dept = ?", qf.Dept)
	}
	return f
}

func (repo *studentRepository) FilterStudents(ctx context.Context, qf student.QueryFilter, page core.Page) ([]student.Student, int, error) {
	f := repo.filter(qf)

	total, err := database.Count(ctx, repo.db, "SELECT COUNT(*) FROM students"+f.where(), f.args...)
	if err != nil {
		return nil, 0, errors.Wrap(err, "counting students")
	}

	var students []student.Student
	q := "SELECT " + studentColumns + " FROM students" + f.where() + orderBy(qf.Sort.Orderings()) + " LIMIT ? OFFSET ?"
	args := append(f.args, page.Limit(), page.Offset())
	if err = database.Select(ctx, repo.db, &students, q, args...); err != nil {
		return nil, 0, errors.Wrap(err, "filtering students")
	}
	return students, total, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	var students []student.Student
	q := "SELECT " + studentColumns + " FROM students" + orderBy(student.SortCreatedDesc.Orderings())
	err := database.Select(ctx, repo.db, &students, q)
	return students, errors.Wrap(err, "querying students")
}

func (repo *studentRepository) QueryDepartments(ctx context.Context) ([]string, error) {
	depts := make([]string, 0)
	err := database.Select(ctx, repo.db, &depts, "SELECT DISTINCT dept FROM students WHERE dept <> '' ORDER BY dept")
	return depts, errors.Wrap(err, "querying departments")
}

func (repo *studentRepository) CountStudents(ctx context.Context) (int, error) {
	n, err := database.Count(ctx, repo.db, "SELECT COUNT(*) FROM students")
	return n, errors.Wrap(err, "counting students")
}

func (repo *studentRepository) MonthlyRegistrations(ctx context.Context, limit int) ([]student.MonthCount, error) {
	ym := database.DialectOf(repo.db).YearMonth("created_at")
	q := "SELECT ym, COUNT(*) AS total FROM (SELECT " + ym + " AS ym FROM students) months " +
		"GROUP BY ym ORDER BY ym DESC LIMIT ?"

	res, err := database.Execute(ctx, repo.db, q, []interface{}{limit}, database.ReadMany)
	if err != nil {
		return nil, errors.Wrap(err, "counting monthly registrations")
	}
	months := make([]student.MonthCount, 0, len(res.Rows))
	for _, row := range res.Rows {
		months = append(months, student.MonthCount{Month: asString(row["ym"]), Total: asInt(row["total"])})
	}
	return months, nil
}
