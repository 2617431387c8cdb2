package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/minicrm/core"
	"github.com/trezcool/minicrm/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) query() []student.Student {
	students := make([]student.Student, 0, len(repo.db.students))
	for _, s := range repo.db.students {
		students = append(students, *s)
	}
	return students
}

func compareStudents(a, b student.Student, field string) int {
	switch field {
	case "name":
		return compareStrings(a.Name, b.Name)
	case "created_at":
		return compareTimes(a.CreatedAt, b.CreatedAt)
	default:
		return compareInts(a.ID, b.ID)
	}
}

func sortStudents(students []student.Student, orderings []core.DBOrdering) {
	sort.SliceStable(students, func(i, j int) bool {
		for _, ord := range orderings {
			c := compareStudents(students[i], students[j], ord.Field)
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func (repo *studentRepository) CreateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	s.ID = repo.db.nextID("students")
	repo.db.students[s.ID] = &s
	return s, nil
}

func (repo *studentRepository) GetStudentByID(_ context.Context, id int64) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.students[id]; ok {
		return *s, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(_ context.Context, s student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.students[s.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	orig.Name = s.Name
	orig.Email = s.Email
	orig.Phone = s.Phone
	orig.Dept = s.Dept
	return *orig, nil
}

func (repo *studentRepository) DeleteStudentsByID(_ context.Context, ids ...int64) (int64, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	var n int64
	for _, id := range ids {
		if _, ok := repo.db.students[id]; ok {
			delete(repo.db.students, id)
			n++
		}
	}
	return n, nil
}

func (repo *studentRepository) FilterStudents(_ context.Context, qf student.QueryFilter, page core.Page) ([]student.Student, int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	matches := make([]student.Student, 0)
	for _, s := range repo.query() {
		if qf.Search != "" && !(containsFold(s.Name, qf.Search) || containsFold(s.Email, qf.Search)) {
			continue
		}
		if qf.Dept != "" && s.Dept != qf.Dept {
			continue
		}
		matches = append(matches, s)
	}
	sortStudents(matches, qf.Sort.Orderings())

	start, end := page.Slice(len(matches))
	return matches[start:end], len(matches), nil
}

func (repo *studentRepository) QueryAllStudents(_ context.Context) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := repo.query()
	sortStudents(students, student.SortCreatedDesc.Orderings())
	return students, nil
}

func (repo *studentRepository) QueryDepartments(_ context.Context) ([]string, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	seen := make(map[string]bool)
	depts := make([]string, 0)
	for _, s := range repo.db.students {
		if s.Dept != "" && !seen[s.Dept] {
			seen[s.Dept] = true
			depts = append(depts, s.Dept)
		}
	}
	sort.Strings(depts)
	return depts, nil
}

func (repo *studentRepository) CountStudents(_ context.Context) (int, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return len(repo.db.students), nil
}

func (repo *studentRepository) MonthlyRegistrations(_ context.Context, limit int) ([]student.MonthCount, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	counts := make(map[string]int)
	for _, s := range repo.db.students {
		counts[s.CreatedAt.UTC().Format("2006-01")]++
	}
	months := make([]student.MonthCount, 0, len(counts))
	for ym, total := range counts {
		months = append(months, student.MonthCount{Month: ym, Total: total})
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month > months[j].Month })
	if len(months) > limit {
		months = months[:limit]
	}
	return months, nil
}
