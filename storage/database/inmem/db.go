package inmemdb

import (
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/assignment"
	"github.com/kitobai/kitob/core/feedback"
	"github.com/kitobai/kitob/core/interview"
	"github.com/kitobai/kitob/core/member"
	"github.com/kitobai/kitob/core/permission"
	"github.com/kitobai/kitob/core/school"
	"github.com/kitobai/kitob/core/user"
)

var errDuplicateID = errors.New("inmemdb: duplicate id")

type (
	DB struct {
		user               *table[user.User]
		branches           *table[school.Branch]
		subjects           *table[school.Subject]
		employeeTypes      *table[school.EmployeeType]
		classes            *table[school.Class]
		academicYears      *table[school.AcademicYear]
		students           *table[member.Student]
		teachers           *table[member.Teacher]
		employees          *table[member.Employee]
		assignments        *table[assignment.Assignment]
		teacherAssignments *table[assignment.TeacherAssignment]
		permissions        *table[permission.Set]
		adminInterviews    *table[interview.AdminInterview]
		interviews         *table[interview.Generated]
		feedback           *table[feedback.Feedback]
	}

	row[T any] struct {
		val T
		seq int
	}

	// table is a map of rows keyed by id, listed newest first.
	table[T any] struct {
		rows      map[string]*row[T]
		seq       int
		id        func(T) string
		createdAt func(T) time.Time
		mutex     sync.RWMutex
	}
)

func newTable[T any](id func(T) string, createdAt func(T) time.Time) *table[T] {
	return &table[T]{rows: make(map[string]*row[T]), id: id, createdAt: createdAt}
}

func Open() *DB {
	personID := func(p member.Person) string { return p.ID }
	personCreated := func(p member.Person) time.Time { return p.CreatedAt }
	namedID := func(n school.Named) string { return n.ID }
	namedCreated := func(n school.Named) time.Time { return n.CreatedAt }

	return &DB{
		user:          newTable(func(u user.User) string { return u.ID }, func(u user.User) time.Time { return u.CreatedAt }),
		branches:      newTable(namedID, namedCreated),
		subjects:      newTable(namedID, namedCreated),
		employeeTypes: newTable(namedID, namedCreated),
		classes: newTable(
			func(c school.Class) string { return c.ID },
			func(c school.Class) time.Time { return c.CreatedAt },
		),
		academicYears: newTable(
			func(ay school.AcademicYear) string { return ay.ID },
			func(ay school.AcademicYear) time.Time { return ay.CreatedAt },
		),
		students: newTable(personID, personCreated),
		teachers: newTable(personID, personCreated),
		employees: newTable(
			func(e member.Employee) string { return e.ID },
			func(e member.Employee) time.Time { return e.CreatedAt },
		),
		assignments: newTable(
			func(a assignment.Assignment) string { return a.ID },
			func(a assignment.Assignment) time.Time { return a.CreatedAt },
		),
		teacherAssignments: newTable(
			func(ta assignment.TeacherAssignment) string { return ta.ID },
			func(ta assignment.TeacherAssignment) time.Time { return ta.CreatedAt },
		),
		permissions: newTable(
			func(s permission.Set) string { return s.ID },
			func(s permission.Set) time.Time { return s.UpdatedAt },
		),
		adminInterviews: newTable(
			func(ai interview.AdminInterview) string { return ai.ID },
			func(ai interview.AdminInterview) time.Time { return ai.CreatedAt },
		),
		interviews: newTable(
			func(g interview.Generated) string { return g.ID },
			func(g interview.Generated) time.Time { return g.CreatedAt },
		),
		feedback: newTable(
			func(f feedback.Feedback) string { return f.ID },
			func(f feedback.Feedback) time.Time { return f.CreatedAt },
		),
	}
}

func (t *table[T]) insert(v T) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	id := t.id(v)
	if _, ok := t.rows[id]; ok {
		return errDuplicateID
	}
	t.seq++
	t.rows[id] = &row[T]{val: v, seq: t.seq}
	return nil
}

// save inserts v or replaces the row with the same id.
func (t *table[T]) save(v T) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	id := t.id(v)
	if r, ok := t.rows[id]; ok {
		r.val = v
		return
	}
	t.seq++
	t.rows[id] = &row[T]{val: v, seq: t.seq}
}

func (t *table[T]) get(id string) (T, error) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if r, ok := t.rows[id]; ok {
		return r.val, nil
	}
	var zero T
	return zero, core.ErrNotFound
}

func (t *table[T]) replace(v T) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	r, ok := t.rows[t.id(v)]
	if !ok {
		return core.ErrNotFound
	}
	r.val = v
	return nil
}

// updateWhere applies fn to every row matching keep.
func (t *table[T]) updateWhere(keep func(T) bool, fn func(*T)) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for _, r := range t.rows {
		if keep(r.val) {
			fn(&r.val)
		}
	}
}

func (t *table[T]) delete(id string) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, ok := t.rows[id]; !ok {
		return core.ErrNotFound
	}
	delete(t.rows, id)
	return nil
}

func (t *table[T]) deleteWhere(keep func(T) bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for id, r := range t.rows {
		if keep(r.val) {
			delete(t.rows, id)
		}
	}
}

// filter returns the rows matching keep (all of them when keep is nil), newest first.
func (t *table[T]) filter(keep func(T) bool) []T {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	rows := make([]*row[T], 0, len(t.rows))
	for _, r := range t.rows {
		if keep == nil || keep(r.val) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		ci, cj := t.createdAt(rows[i].val), t.createdAt(rows[j].val)
		if ci.Equal(cj) {
			return rows[i].seq > rows[j].seq
		}
		return ci.After(cj)
	})

	vals := make([]T, 0, len(rows))
	for _, r := range rows {
		vals = append(vals, r.val)
	}
	return vals
}

// first returns the newest row matching keep.
func (t *table[T]) first(keep func(T) bool) (T, error) {
	if vals := t.filter(keep); len(vals) > 0 {
		return vals[0], nil
	}
	var zero T
	return zero, core.ErrNotFound
}

func (t *table[T]) count(keep func(T) bool) int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if keep == nil {
		return len(t.rows)
	}
	n := 0
	for _, r := range t.rows {
		if keep(r.val) {
			n++
		}
	}
	return n
}

// matches reports whether the filter value want is empty or equal to got.
func matches(want, got string) bool { return want == "" || want == got }
