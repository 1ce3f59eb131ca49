package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/agent"
	"github.com/kitobai/kitob/core/assignment"
	"github.com/kitobai/kitob/core/dashboard"
	"github.com/kitobai/kitob/core/feedback"
	"github.com/kitobai/kitob/core/interview"
	"github.com/kitobai/kitob/core/member"
	"github.com/kitobai/kitob/core/permission"
	"github.com/kitobai/kitob/core/school"
	"github.com/kitobai/kitob/core/user"
	blobsvc "github.com/kitobai/kitob/services/blob"
	cachesvc "github.com/kitobai/kitob/services/cache"
	"github.com/kitobai/kitob/storage/database/inmem"
	testutil "github.com/kitobai/kitob/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

// fakeSpeech is a speech proxy answering STT with raw.
type fakeSpeech struct {
	testutil.FakeSpeech
	configured bool
	raw        []byte
	uploads    [][]byte
}

func (f *fakeSpeech) Configured() bool { return f.configured }

func (f *fakeSpeech) STT(_ context.Context, audio []byte, _, _ string) ([]byte, error) {
	f.uploads = append(f.uploads, audio)
	return f.raw, nil
}

type testEnv struct {
	t      *testing.T
	conf   *core.Config
	db     *inmemdb.DB
	app    Server
	auth   *authenticator
	llm    *testutil.FakeLLM
	speech *fakeSpeech
	mail   *testutil.FakeMail

	usrRepo       user.Repository
	employees     member.EmployeeRepository
	teachers      member.PersonRepository
	students      member.PersonRepository
	permissions   permission.Repository
	admins        interview.AdminRepository
	generated     interview.GeneratedRepository
	feedbacks     feedback.Repository
	assignments   assignment.Repository
	branchSvc     school.NamedService
	classSvc      school.ClassService
	assignmentSvc assignment.Service
}

// newTestEnv serves the API over a fresh in-memory database.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	conf := core.NewTestConfig()
	conf.Storage.LocalDir = t.TempDir()
	conf.Storage.LocalBaseURL = "http://localhost:8000/media"

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)
	permission.InitValidators(validate, translator)
	logger := core.NopLogger{}

	db := inmemdb.Open()
	e := &testEnv{
		t:           t,
		conf:        conf,
		db:          db,
		llm:         &testutil.FakeLLM{},
		speech:      &fakeSpeech{configured: true},
		mail:        &testutil.FakeMail{},
		usrRepo:     inmemdb.NewUserRepository(db),
		employees:   inmemdb.NewEmployeeRepository(db),
		teachers:    inmemdb.NewTeacherRepository(db),
		students:    inmemdb.NewStudentRepository(db),
		permissions: inmemdb.NewPermissionRepository(db),
		admins:      inmemdb.NewAdminInterviewRepository(db),
		generated:   inmemdb.NewGeneratedInterviewRepository(db),
		feedbacks:   inmemdb.NewFeedbackRepository(db),
		assignments: inmemdb.NewAssignmentRepository(db),
	}

	branches := inmemdb.NewBranchRepository(db)
	subjects := inmemdb.NewSubjectRepository(db)
	employeeTypes := inmemdb.NewEmployeeTypeRepository(db)
	classes := inmemdb.NewClassRepository(db)
	teacherAssignments := inmemdb.NewTeacherAssignmentRepository(db)

	usrSvc := user.NewService(e.usrRepo, e.mail, conf, logger)
	e.branchSvc = school.NewBranchService(branches)
	e.classSvc = school.NewClassService(classes, branches)
	e.assignmentSvc = assignment.NewService(e.assignments, e.students, branches, classes)
	adminSvc := interview.NewAdminService(
		e.admins, branches, classes, e.teachers, e.assignmentSvc, teacherAssignments, e.feedbacks,
	)
	generatedSvc := interview.NewGeneratedService(e.generated, e.llm, logger)
	feedbackSvc := feedback.NewService(e.feedbacks, e.llm, adminSvc, usrSvc, logger)

	deps := ServerDeps{
		Conf:       conf,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,

		UserSvc:              usrSvc,
		BranchSvc:            e.branchSvc,
		SubjectSvc:           school.NewSubjectService(subjects),
		EmployeeTypeSvc:      school.NewEmployeeTypeService(employeeTypes),
		ClassSvc:             e.classSvc,
		AcademicYearSvc:      school.NewAcademicYearService(inmemdb.NewAcademicYearRepository(db)),
		StudentSvc:           member.NewStudentService(e.students, usrSvc, validate, logger),
		TeacherSvc:           member.NewTeacherService(e.teachers, usrSvc, validate, logger),
		EmployeeSvc:          member.NewEmployeeService(e.employees, employeeTypes, branches, usrSvc, validate, logger),
		AssignmentSvc:        e.assignmentSvc,
		TeacherAssignmentSvc: assignment.NewTeacherService(teacherAssignments, e.teachers, branches, classes, subjects),
		PermissionSvc:        permission.NewService(e.permissions),
		Authorizer:           permission.NewAuthorizer(e.permissions, e.employees),
		DashboardSvc: dashboard.NewService(dashboard.Repositories{
			Branches:   branches,
			Classes:    classes,
			Subjects:   subjects,
			Interviews: e.admins,
			Generated:  e.generated,
		}, usrSvc, cachesvc.NewMemoryCache(), conf.Redis.DashboardTTL, logger),
		AdminInterviewSvc: adminSvc,
		GeneratedSvc:      generatedSvc,
		FeedbackSvc:       feedbackSvc,
		ChatSvc:           agent.NewService(e.llm, generatedSvc, adminSvc, logger),

		Mail:     e.mail,
		Speech:   e.speech,
		Covers:   blobsvc.NewCovers(blobsvc.NewLocalStore(conf.Storage.LocalDir, conf.Storage.LocalBaseURL), conf.Storage.CoverMaxWidth),
		MediaDir: conf.Storage.LocalDir,
	}
	e.app = NewServer(deps)
	e.auth = newAuthenticator(conf, usrSvc)
	return e
}

func (e *testEnv) createUser(name, email, role string, status ...core.Status) user.User {
	var st core.Status
	if len(status) > 0 {
		st = status[0]
	}
	return testutil.CreateUser(e.t, e.usrRepo, name, email, testPassword, role, st)
}

func (e *testEnv) token(usr user.User) string {
	e.t.Helper()
	token, err := e.auth.tokenFor(usr)
	if err != nil {
		e.t.Fatalf("token(): %v", err)
	}
	return token
}

func (e *testEnv) serve(req *http.Request, rec *httptest.ResponseRecorder) {
	e.app.ServeHTTP(rec, req)
}

// run serves every test and checks its code and data.
func (e *testEnv) run(tests []httpTest) {
	for _, tt := range tests {
		e.t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			e.serve(req, rec)
			checkCodeAndData(t, tt, rec)
		})
	}
}

const testPassword = "Kitob2024pwd"

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList(): %v", err)
	}
	return data
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	wantCode := tt.wantCode
	if wantCode == 0 {
		wantCode = http.StatusOK
	}
	assert.Equal(t, wantCode, rec.Code, rec.Body.String())
	if tt.wantData != nil {
		assert.JSONEq(t, string(tt.wantData), rec.Body.String())
	}
}

// decode unmarshals the recorded body into v.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode(%s): %v", rec.Body.String(), err)
	}
}
