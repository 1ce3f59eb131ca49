package member_test

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/member"
	"github.com/kitobai/kitob/core/school"
	"github.com/kitobai/kitob/core/user"
	"github.com/kitobai/kitob/storage/database/inmem"
)

const pwd = "Qalam-2024x"

type fixture struct {
	db       *inmemdb.DB
	usrSvc   user.Service
	validate *validator.Validate
}

func newFixture() fixture {
	db := inmemdb.Open()
	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)
	usrSvc := user.NewService(inmemdb.NewUserRepository(db), nil, core.NewTestConfig(), core.NopLogger{})
	return fixture{db: db, usrSvc: usrSvc, validate: validate}
}

func TestPersonService(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	students := member.NewStudentService(inmemdb.NewStudentRepository(f.db), f.usrSvc, f.validate, core.NopLogger{})
	teachers := member.NewTeacherService(inmemdb.NewTeacherRepository(f.db), f.usrSvc, f.validate, core.NopLogger{})

	t.Run("names are required", func(t *testing.T) {
		_, err := students.Create(ctx, member.PersonInput{FirstName: "Ali", Email: "ali@kitob.uz", Password: pwd})
		require.True(t, core.IsValidationError(err))
		assert.Equal(t, "Ism va familiya majburiy", err.Error())
	})

	t.Run("password is required", func(t *testing.T) {
		_, err := students.Create(ctx, member.PersonInput{FirstName: "Ali", LastName: "Valiyev", Email: "ali@kitob.uz"})
		assert.IsType(t, validator.ValidationErrors{}, err)
	})

	s, err := students.Create(ctx, member.PersonInput{
		FirstName: " Ali ", LastName: "Valiyev", Email: "Ali@Kitob.uz", Gender: core.GenderMale, Password: pwd,
	})
	require.NoError(t, err)

	t.Run("creates the identity user", func(t *testing.T) {
		assert.Equal(t, "Ali", s.FirstName)
		assert.Equal(t, "ali@kitob.uz", s.Email)
		assert.Equal(t, user.RoleStudent, s.Role)
		assert.Equal(t, core.StatusActive, s.Status)

		usr, err := f.usrSvc.Authenticate(ctx, "ali@kitob.uz", pwd)
		require.NoError(t, err)
		assert.Equal(t, s.UserID, usr.ID)
		assert.Equal(t, "Ali Valiyev", usr.Name)
		assert.Equal(t, user.RoleStudent, usr.Role)

		got, err := students.GetByUserID(ctx, usr.ID)
		require.NoError(t, err)
		assert.Equal(t, s, got)
	})

	t.Run("email is unique across people", func(t *testing.T) {
		_, err := teachers.Create(ctx, member.PersonInput{FirstName: "Vali", LastName: "Aliyev", Email: "ali@kitob.uz", Password: pwd})
		require.True(t, core.IsValidationError(err))
		assert.Equal(t, user.ErrEmailExists.Error(), err.Error())
	})

	t.Run("update follows on the identity user", func(t *testing.T) {
		in := member.PersonInput{FirstName: "Alisher", LastName: "Valiyev", Email: "alisher@kitob.uz", Status: core.StatusInactive}
		updated, err := students.Update(ctx, s.ID, in)
		require.NoError(t, err)
		assert.Equal(t, "alisher@kitob.uz", updated.Email)

		usr, err := f.usrSvc.GetByID(ctx, s.UserID)
		require.NoError(t, err)
		assert.Equal(t, "Alisher Valiyev", usr.Name)
		assert.Equal(t, "alisher@kitob.uz", usr.Email)
		assert.Equal(t, core.StatusInactive, usr.Status)

		_, err = f.usrSvc.Authenticate(ctx, "alisher@kitob.uz", pwd)
		assert.Equal(t, user.ErrAccountDeactivated, err)
	})

	t.Run("update is validated", func(t *testing.T) {
		in := member.PersonInput{FirstName: "Alisher", LastName: "Valiyev", Email: "alisher@kitob.uz", Status: "banana", Gender: "robot"}
		_, err := students.Update(ctx, s.ID, in)
		assert.IsType(t, validator.ValidationErrors{}, err)

		_, err = students.UpdateStatus(ctx, s.ID, "banana")
		require.True(t, core.IsValidationError(err))
		assert.Equal(t, "Holat noto'g'ri", err.Error())

		got, err := students.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, core.StatusInactive, got.Status)
		assert.Equal(t, core.Gender(""), got.Gender)
	})

	t.Run("update status", func(t *testing.T) {
		updated, err := students.UpdateStatus(ctx, s.ID, core.StatusActive)
		require.NoError(t, err)
		assert.Equal(t, core.StatusActive, updated.Status)

		usr, err := f.usrSvc.GetByID(ctx, s.UserID)
		require.NoError(t, err)
		assert.Equal(t, core.StatusActive, usr.Status)
	})

	t.Run("delete removes the identity user", func(t *testing.T) {
		require.NoError(t, students.Delete(ctx, s.ID))

		_, err := students.Get(ctx, s.ID)
		require.True(t, core.IsNotFound(err))
		assert.Equal(t, member.StudentKind.ErrNotFound, err.Error())

		_, err = f.usrSvc.GetByID(ctx, s.UserID)
		assert.Equal(t, user.ErrNotFound, err)

		list, err := students.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestEmployeeService(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	typeRepo := inmemdb.NewEmployeeTypeRepository(f.db)
	branchRepo := inmemdb.NewBranchRepository(f.db)
	svc := member.NewEmployeeService(inmemdb.NewEmployeeRepository(f.db), typeRepo, branchRepo, f.usrSvc, f.validate, core.NopLogger{})

	secretary, err := school.NewEmployeeTypeService(typeRepo).Create(ctx, school.NamedInput{Name: "Kotiba"})
	require.NoError(t, err)
	accountant, err := school.NewEmployeeTypeService(typeRepo).Create(ctx, school.NamedInput{Name: "Hisobchi"})
	require.NoError(t, err)
	branch, err := school.NewBranchService(branchRepo).Create(ctx, school.NamedInput{Name: "Chilonzor"})
	require.NoError(t, err)

	person := member.PersonInput{FirstName: "Olim", LastName: "Karimov", Email: "olim@kitob.uz", Password: pwd}

	invalid := []struct {
		name string
		in   member.EmployeeInput
		want string
	}{
		{name: "no type", in: member.EmployeeInput{PersonInput: person, BranchID: branch.ID}, want: "Lavozim va filial majburiy"},
		{name: "unknown type", in: member.EmployeeInput{PersonInput: person, TypeID: "x", BranchID: branch.ID}, want: "Lavozim topilmadi"},
		{name: "unknown branch", in: member.EmployeeInput{PersonInput: person, TypeID: secretary.ID, BranchID: "x"}, want: "Filial topilmadi"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tt.in)
			require.True(t, core.IsValidationError(err))
			assert.Equal(t, tt.want, err.Error())
		})
	}

	e, err := svc.Create(ctx, member.EmployeeInput{PersonInput: person, TypeID: secretary.ID, BranchID: branch.ID})
	require.NoError(t, err)
	assert.Equal(t, "Kotiba", e.TypeName)
	assert.Equal(t, "Chilonzor", e.BranchName)
	assert.Equal(t, "Kotiba", e.Role)

	usr, err := f.usrSvc.GetByID(ctx, e.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Kotiba", usr.Role)
	assert.Equal(t, branch.ID, usr.BranchID)

	t.Run("update is validated", func(t *testing.T) {
		bad := person
		bad.Password = ""
		bad.Status = "banana"
		bad.Gender = "robot"
		_, err := svc.Update(ctx, e.ID, member.EmployeeInput{PersonInput: bad, TypeID: secretary.ID, BranchID: branch.ID})
		assert.IsType(t, validator.ValidationErrors{}, err)

		_, err = svc.UpdateStatus(ctx, e.ID, "banana")
		require.True(t, core.IsValidationError(err))

		got, err := svc.Get(ctx, e.ID)
		require.NoError(t, err)
		assert.Equal(t, core.StatusActive, got.Status)
		usr, err := f.usrSvc.GetByID(ctx, e.UserID)
		require.NoError(t, err)
		assert.Equal(t, core.StatusActive, usr.Status)
	})

	person.Password = ""
	e, err = svc.Update(ctx, e.ID, member.EmployeeInput{PersonInput: person, TypeID: accountant.ID, BranchID: branch.ID})
	require.NoError(t, err)
	assert.Equal(t, "Hisobchi", e.Role)

	usr, err = f.usrSvc.GetByID(ctx, e.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Hisobchi", usr.Role)
	assert.True(t, usr.IsStaff())

	require.NoError(t, svc.Delete(ctx, e.ID))
	_, err = f.usrSvc.GetByID(ctx, e.UserID)
	assert.Equal(t, user.ErrNotFound, err)
}

func TestEmployeeRole(t *testing.T) {
	tests := []struct {
		typeName string
		want     string
	}{
		{typeName: " Kotiba ", want: "Kotiba"},
		{typeName: "", want: user.RoleEmployee},
		{typeName: "Manager", want: user.RoleEmployee},
		{typeName: "admin", want: user.RoleEmployee},
		{typeName: "TEACHER", want: user.RoleEmployee},
		{typeName: "student", want: user.RoleEmployee},
	}
	for _, tt := range tests {
		t.Run(tt.typeName, func(t *testing.T) {
			role := member.EmployeeRole(tt.typeName)
			assert.Equal(t, tt.want, role)
			usr := user.User{Role: role}
			assert.False(t, usr.IsAdmin())
		})
	}
}
