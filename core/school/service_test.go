package school_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/school"
	"github.com/kitobai/kitob/storage/database/inmem"
)

// tick makes core.NowFunc advance one minute per call.
func tick(t *testing.T) {
	now := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	nowFunc := core.NowFunc
	core.NowFunc = func() time.Time {
		now = now.Add(time.Minute)
		return now
	}
	t.Cleanup(func() { core.NowFunc = nowFunc })
}

func TestNamedService(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.Open()

	kinds := []struct {
		svc  school.NamedService
		kind school.Kind
	}{
		{svc: school.NewBranchService(inmemdb.NewBranchRepository(db)), kind: school.BranchKind},
		{svc: school.NewSubjectService(inmemdb.NewSubjectRepository(db)), kind: school.SubjectKind},
		{svc: school.NewEmployeeTypeService(inmemdb.NewEmployeeTypeRepository(db)), kind: school.EmployeeTypeKind},
	}

	for _, k := range kinds {
		t.Run(k.kind.Name, func(t *testing.T) {
			svc := k.svc

			_, err := svc.Create(ctx, school.NamedInput{Name: "   "})
			require.True(t, core.IsValidationError(err))
			assert.Equal(t, k.kind.ErrEmptyName, err.Error())

			created, err := svc.Create(ctx, school.NamedInput{Name: "  Chilonzor "})
			require.NoError(t, err)
			assert.Equal(t, "Chilonzor", created.Name)
			assert.Equal(t, core.StatusActive, created.Status)

			got, err := svc.Get(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, created.Name, got.Name)
			assert.Equal(t, created.Status, got.Status)

			updated, err := svc.Update(ctx, created.ID, school.NamedInput{Name: "Yunusobod"})
			require.NoError(t, err)
			assert.Equal(t, "Yunusobod", updated.Name)
			assert.Equal(t, core.StatusActive, updated.Status)

			updated, err = svc.UpdateStatus(ctx, created.ID, core.StatusInactive)
			require.NoError(t, err)
			assert.Equal(t, core.StatusInactive, updated.Status)

			count, err := svc.Count(ctx, core.StatusActive)
			require.NoError(t, err)
			assert.Equal(t, 0, count)

			require.NoError(t, svc.Delete(ctx, created.ID))
			_, err = svc.Get(ctx, created.ID)
			require.True(t, core.IsNotFound(err))
			assert.Equal(t, k.kind.ErrNotFound, err.Error())

			err = svc.Delete(ctx, created.ID)
			assert.True(t, core.IsNotFound(err))

			list, err := svc.List(ctx)
			require.NoError(t, err)
			assert.NotNil(t, list)
			assert.Empty(t, list)
		})
	}
}

func TestEmployeeTypeReservedNames(t *testing.T) {
	ctx := context.Background()
	svc := school.NewEmployeeTypeService(inmemdb.NewEmployeeTypeRepository(inmemdb.Open()))

	for _, name := range []string{"Manager", " admin ", "ADMINISTRATOR", "teacher", "Student"} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, school.NamedInput{Name: name})
			require.True(t, core.IsValidationError(err))
			assert.Equal(t, school.EmployeeTypeKind.ErrReservedName, err.Error())
		})
	}

	secretary, err := svc.Create(ctx, school.NamedInput{Name: "Kotiba"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, secretary.ID, school.NamedInput{Name: "manager"})
	require.True(t, core.IsValidationError(err))

	// other kinds may use any name
	branch, err := school.NewBranchService(inmemdb.NewBranchRepository(inmemdb.Open())).Create(ctx, school.NamedInput{Name: "Admin"})
	require.NoError(t, err)
	assert.Equal(t, "Admin", branch.Name)
}

func TestClassService(t *testing.T) {
	tick(t)
	ctx := context.Background()
	db := inmemdb.Open()
	branchSvc := school.NewBranchService(inmemdb.NewBranchRepository(db))
	svc := school.NewClassService(inmemdb.NewClassRepository(db), inmemdb.NewBranchRepository(db))

	branch, err := branchSvc.Create(ctx, school.NamedInput{Name: "Chilonzor"})
	require.NoError(t, err)
	other, err := branchSvc.Create(ctx, school.NamedInput{Name: "Yunusobod"})
	require.NoError(t, err)

	invalid := []struct {
		name string
		in   school.ClassInput
		want string
	}{
		{name: "no name", in: school.ClassInput{BranchID: branch.ID, AcademicYear: "2024-2025"}, want: "Sinf nomi bo'sh bo'lishi mumkin emas"},
		{name: "no branch", in: school.ClassInput{Name: "5-A", AcademicYear: "2024-2025"}, want: "Filial tanlash majburiy"},
		{name: "no year", in: school.ClassInput{Name: "5-A", BranchID: branch.ID}, want: "O'quv yili tanlash majburiy"},
		{name: "unknown branch", in: school.ClassInput{Name: "5-A", BranchID: "nope", AcademicYear: "2024-2025"}, want: "Tanlangan filial topilmadi"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			require.True(t, core.IsValidationError(err))
			assert.Equal(t, tt.want, err.Error())
		})
	}

	c5a, err := svc.Create(ctx, school.ClassInput{Name: "5-A", BranchID: branch.ID, AcademicYear: "2024-2025"})
	require.NoError(t, err)
	assert.Equal(t, "Chilonzor", c5a.BranchName)
	c6b, err := svc.Create(ctx, school.ClassInput{Name: "6-B", BranchID: other.ID, AcademicYear: "2024-2025"})
	require.NoError(t, err)

	all, err := svc.List(ctx, school.ClassFilter{})
	require.NoError(t, err)
	assert.Equal(t, []school.Class{c6b, c5a}, all)

	byBranch, err := svc.List(ctx, school.ClassFilter{BranchID: branch.ID})
	require.NoError(t, err)
	assert.Equal(t, []school.Class{c5a}, byBranch)

	moved, err := svc.Update(ctx, c5a.ID, school.ClassInput{Name: "5-A", BranchID: other.ID, AcademicYear: "2025-2026"})
	require.NoError(t, err)
	assert.Equal(t, "Yunusobod", moved.BranchName)
	assert.Equal(t, core.StatusActive, moved.Status)

	active, err := svc.Count(ctx, core.StatusActive)
	require.NoError(t, err)
	assert.Equal(t, 2, active)
}

func TestAcademicYearService(t *testing.T) {
	tick(t)
	ctx := context.Background()
	svc := school.NewAcademicYearService(inmemdb.NewAcademicYearRepository(inmemdb.Open()))

	_, err := svc.GetActive(ctx)
	require.True(t, core.IsNotFound(err))

	_, err = svc.Create(ctx, school.AcademicYearInput{StartDate: "2023-09-01", EndDate: "2024-06-01"})
	require.True(t, core.IsValidationError(err))
	assert.Equal(t, "O'quv yili nomi majburiy", err.Error())

	_, err = svc.Create(ctx, school.AcademicYearInput{Name: "2023-2024", StartDate: "2023-09-01"})
	require.True(t, core.IsValidationError(err))
	assert.Equal(t, "Boshlanish va tugash sanasi majburiy", err.Error())

	y1, err := svc.Create(ctx, school.AcademicYearInput{
		Name: "2022-2023", StartDate: "2022-09-01", EndDate: "2023-06-01",
		Semesters: []school.Semester{{ID: "1-semestr", Name: " "}, {ID: "2", Name: "Bahor"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "1-semestr", y1.Semesters[0].Name)
	assert.Equal(t, "Bahor", y1.Semesters[1].Name)

	y2, err := svc.Create(ctx, school.AcademicYearInput{Name: "2023-2024", StartDate: "2023-09-01", EndDate: "2024-06-01"})
	require.NoError(t, err)
	y3, err := svc.Create(ctx, school.AcademicYearInput{Name: "2024-2025", StartDate: "2024-09-01", EndDate: "2025-06-01"})
	require.NoError(t, err)

	t.Run("only the latest created is active", func(t *testing.T) {
		active, err := svc.GetActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, y3.ID, active.ID)

		years, err := svc.List(ctx)
		require.NoError(t, err)
		require.Len(t, years, 3)
		assert.Equal(t, []string{y3.ID, y2.ID, y1.ID}, []string{years[0].ID, years[1].ID, years[2].ID})
		assert.Equal(t, core.StatusInactive, years[1].Status)
		assert.Equal(t, core.StatusInactive, years[2].Status)
	})

	t.Run("update to active deactivates the others", func(t *testing.T) {
		in := school.AcademicYearInput{Name: "2022-2023", StartDate: "2022-09-01", EndDate: "2023-06-01", Status: core.StatusActive}
		_, err := svc.Update(ctx, y1.ID, in)
		require.NoError(t, err)

		active, err := svc.GetActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, y1.ID, active.ID)

		y3, err = svc.Get(ctx, y3.ID)
		require.NoError(t, err)
		assert.Equal(t, core.StatusInactive, y3.Status)
	})

	t.Run("update without status deactivates", func(t *testing.T) {
		in := school.AcademicYearInput{Name: "2022-2023", StartDate: "2022-09-01", EndDate: "2023-06-01"}
		updated, err := svc.Update(ctx, y1.ID, in)
		require.NoError(t, err)
		assert.Equal(t, core.StatusInactive, updated.Status)

		_, err = svc.GetActive(ctx)
		assert.True(t, core.IsNotFound(err))

		in.Status = core.StatusActive
		_, err = svc.Update(ctx, y1.ID, in)
		require.NoError(t, err)
	})

	t.Run("deleting the active year promotes the latest remaining", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, y1.ID))

		active, err := svc.GetActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, y3.ID, active.ID)
	})

	t.Run("deleting an inactive year keeps the active one", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, y2.ID))

		active, err := svc.GetActive(ctx)
		require.NoError(t, err)
		assert.Equal(t, y3.ID, active.ID)
	})

	t.Run("deleting the last year", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, y3.ID))
		_, err := svc.GetActive(ctx)
		assert.True(t, core.IsNotFound(err))

		err = svc.Delete(ctx, y3.ID)
		assert.True(t, core.IsNotFound(err))
	})
}
