package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/minicrm/core"
)

var (
	// errors
	ErrNotFound    = errors.New("student not found")
	ErrNoSelection = errors.New("no student selected")
)

// histogramMonths is the number of most recent months (with registrations) the dashboard shows.
const histogramMonths = 12

type (
	Repository interface {
		CreateStudent(ctx context.Context, s Student) (Student, error)
		GetStudentByID(ctx context.Context, id int64) (Student, error)
		UpdateStudent(ctx context.Context, s Student) (Student, error)
		// DeleteStudentsByID returns the number of deleted rows.
		DeleteStudentsByID(ctx context.Context, ids ...int64) (int64, error)
		// FilterStudents applies AND on the QueryFilter fields.
		// QueryFilter.Search does a case-insensitive substring match on one of Student.Name or Student.Email.
		FilterStudents(ctx context.Context, filter QueryFilter, page core.Page) ([]Student, int, error)
		// QueryAllStudents returns every student, newest first.
		QueryAllStudents(ctx context.Context) ([]Student, error)
		QueryDepartments(ctx context.Context) ([]string, error)
		CountStudents(ctx context.Context) (int, error)
		// MonthlyRegistrations counts registrations per month, newest month first.
		MonthlyRegistrations(ctx context.Context, limit int) ([]MonthCount, error)
	}

	Service struct {
		repo     Repository
		pageSize int
	}
)

func NewService(repo Repository, pageSize int) *Service {
	return &Service{repo: repo, pageSize: pageSize}
}

func (svc *Service) List(ctx context.Context, filter QueryFilter) (ListResult, error) {
	filter.Clean()
	page := core.NewPage(core.ParsePageNumber(filter.Page), svc.pageSize)

	students, total, err := svc.repo.FilterStudents(ctx, filter, page)
	if err != nil {
		return ListResult{}, errors.Wrap(err, "filtering students")
	}
	depts, err := svc.repo.QueryDepartments(ctx)
	if err != nil {
		return ListResult{}, errors.Wrap(err, "querying departments")
	}
	if students == nil {
		students = []Student{}
	}
	return ListResult{
		Students:   students,
		Total:      total,
		Page:       page.Number,
		PageSize:   page.Size,
		TotalPages: core.TotalPages(total, page.Size),
		Depts:      depts,
	}, nil
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	return svc.repo.CreateStudent(ctx, Student{
		Name:      ns.Name,
		Email:     ns.Email,
		Phone:     ns.Phone,
		Dept:      ns.Dept,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) GetByID(ctx context.Context, id int64) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int64, ns NewStudent) (Student, error) {
	return svc.repo.UpdateStudent(ctx, Student{
		ID:    id,
		Name:  ns.Name,
		Email: ns.Email,
		Phone: ns.Phone,
		Dept:  ns.Dept,
	})
}

// Delete removes one student, ErrNotFound if there was none.
func (svc *Service) Delete(ctx context.Context, id int64) error {
	n, err := svc.repo.DeleteStudentsByID(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMany removes the selected students in one statement and returns how many were deleted.
func (svc *Service) DeleteMany(ctx context.Context, ids ...int64) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoSelection
	}
	return svc.repo.DeleteStudentsByID(ctx, ids...)
}

func (svc *Service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountStudents(ctx)
}

func (svc *Service) MonthlyRegistrations(ctx context.Context) ([]MonthCount, error) {
	return svc.repo.MonthlyRegistrations(ctx, histogramMonths)
}
