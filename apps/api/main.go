package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/kitobai/kitob/apps/api/echo"
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
	appfs "github.com/kitobai/kitob/fs"
	blobsvc "github.com/kitobai/kitob/services/blob"
	cachesvc "github.com/kitobai/kitob/services/cache"
	emailsvc "github.com/kitobai/kitob/services/email"
	llmsvc "github.com/kitobai/kitob/services/llm"
	logsvc "github.com/kitobai/kitob/services/logger"
	speechsvc "github.com/kitobai/kitob/services/speech"
	"github.com/kitobai/kitob/storage/database"
	sqlxrepos "github.com/kitobai/kitob/storage/database/sqlx"
	"github.com/kitobai/kitob/storage/docstore"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()
	ctx := context.Background()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up the users DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Error("Failed to close", err)
		}
	}()

	// set up the documents DB
	mongoClient, docs, err := docstore.Connect(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("connecting to document store: %v", err), err)
	}
	defer func() {
		if err = mongoClient.Disconnect(context.Background()); err != nil {
			dbLogger.Error("Failed to disconnect", err)
		}
	}()
	if err = docstore.EnsureIndexes(ctx, docs); err != nil {
		dbLogger.Error(fmt.Sprintf("ensuring indexes: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewService(conf, logger)
	}

	llm, err := llmsvc.NewClient(ctx, conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up LLM client: %v", err), err)
	}
	defer llm.Close()
	if conf.Gemini.APIKey == "" {
		logger.Warn("Gemini API key is not set: chat and feedback are disabled")
	}
	speech := speechsvc.NewClient(conf)

	store, err := blobsvc.NewStore(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up file storage: %v", err), err)
	}
	var mediaDir string
	if conf.Storage.Driver == "" || conf.Storage.Driver == blobsvc.DriverLocal {
		mediaDir = conf.Storage.LocalDir
	}

	var cache dashboard.Cache
	if redisCache, err := cachesvc.NewRedisCache(ctx, conf); err != nil {
		logger.Warn(fmt.Sprintf("redis unavailable, caching in memory: %v", err), err)
		cache = cachesvc.NewMemoryCache()
	} else {
		defer redisCache.Close()
		cache = redisCache
	}

	// repositories
	usrRepo := sqlxrepos.NewUserRepository(db)
	branches := docstore.NewBranchRepository(docs)
	subjects := docstore.NewSubjectRepository(docs)
	employeeTypes := docstore.NewEmployeeTypeRepository(docs)
	classes := docstore.NewClassRepository(docs)
	students := docstore.NewStudentRepository(docs)
	teachers := docstore.NewTeacherRepository(docs)
	employees := docstore.NewEmployeeRepository(docs)
	teacherAssignments := docstore.NewTeacherAssignmentRepository(docs)
	permissions := docstore.NewPermissionRepository(docs)
	admins := docstore.NewAdminInterviewRepository(docs)
	generated := docstore.NewGeneratedInterviewRepository(docs)
	feedbacks := docstore.NewFeedbackRepository(docs)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)
	permission.InitValidators(validate, translator)

	core.ParseEmailTemplates(appfs.FS, conf, logger)
	user.LoadCommonPasswords(appfs.FS, logger)

	usrSvc := user.NewService(usrRepo, mailSvc, conf, logger)
	assignmentSvc := assignment.NewService(docstore.NewAssignmentRepository(docs), students, branches, classes)
	adminSvc := interview.NewAdminService(admins, branches, classes, teachers, assignmentSvc, teacherAssignments, feedbacks)
	generatedSvc := interview.NewGeneratedService(generated, llm, logger)
	feedbackSvc := feedback.NewService(feedbacks, llm, adminSvc, usrSvc, logger)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugAddress, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Validate:   validate,
			Translator: translator,

			UserSvc:              usrSvc,
			BranchSvc:            school.NewBranchService(branches),
			SubjectSvc:           school.NewSubjectService(subjects),
			EmployeeTypeSvc:      school.NewEmployeeTypeService(employeeTypes),
			ClassSvc:             school.NewClassService(classes, branches),
			AcademicYearSvc:      school.NewAcademicYearService(docstore.NewAcademicYearRepository(docs)),
			StudentSvc:           member.NewStudentService(students, usrSvc, validate, logger),
			TeacherSvc:           member.NewTeacherService(teachers, usrSvc, validate, logger),
			EmployeeSvc:          member.NewEmployeeService(employees, employeeTypes, branches, usrSvc, validate, logger),
			AssignmentSvc:        assignmentSvc,
			TeacherAssignmentSvc: assignment.NewTeacherService(teacherAssignments, teachers, branches, classes, subjects),
			PermissionSvc:        permission.NewService(permissions),
			Authorizer:           permission.NewAuthorizer(permissions, employees),
			DashboardSvc: dashboard.NewService(dashboard.Repositories{
				Branches:   branches,
				Classes:    classes,
				Subjects:   subjects,
				Interviews: admins,
				Generated:  generated,
			}, usrSvc, cache, conf.Redis.DashboardTTL, logger),
			AdminInterviewSvc: adminSvc,
			GeneratedSvc:      generatedSvc,
			FeedbackSvc:       feedbackSvc,
			ChatSvc:           agent.NewService(llm, generatedSvc, adminSvc, logger),

			Mail:     mailSvc,
			Speech:   speech,
			Covers:   blobsvc.NewCovers(store, conf.Storage.CoverMaxWidth),
			MediaDir: mediaDir,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(conf); err != nil {
		return nil, err
	}

	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}

	if err = database.Migrate(db.DB); err != nil {
		return nil, err
	}
	return db, nil
}
