package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/assignment"
	"github.com/kitobai/kitob/core/dashboard"
	"github.com/kitobai/kitob/core/feedback"
	"github.com/kitobai/kitob/core/interview"
	"github.com/kitobai/kitob/core/permission"
	blobsvc "github.com/kitobai/kitob/services/blob"
)

const coverField = "file"

// registerAdminAPI serves the Admin panel. Every endpoint requires its permission action.
func registerAdminAPI(g *echo.Group, deps ServerDeps) {
	authz := deps.Authorizer

	registerNamedAPI(g.Group("/branches"), deps.BranchSvc, authz, crudActions{
		view:   permission.BranchesView,
		create: permission.BranchesCreate,
		edit:   permission.BranchesEdit,
		delete: permission.BranchesDelete,
	})
	registerNamedAPI(g.Group("/subjects"), deps.SubjectSvc, authz, crudActions{
		view:   permission.SubjectsView,
		create: permission.SubjectsCreate,
		edit:   permission.SubjectsEdit,
		delete: permission.SubjectsDelete,
	})
	registerNamedAPI(g.Group("/employee-types"), deps.EmployeeTypeSvc, authz, crudActions{
		view:   permission.EmployeeTypesView,
		create: permission.EmployeeTypesCreate,
		edit:   permission.EmployeeTypesEdit,
		delete: permission.EmployeeTypesDelete,
	})
	registerClassAPI(g.Group("/classes"), deps.ClassSvc, authz)
	registerAcademicYearAPI(g.Group("/academic-years"), deps.AcademicYearSvc, authz)

	registerPersonAPI(g.Group("/students"), deps.StudentSvc, "Talabalar", authz, crudActions{
		view:   permission.StudentsView,
		create: permission.StudentsCreate,
		edit:   permission.StudentsEdit,
		delete: permission.StudentsDelete,
	})
	registerPersonAPI(g.Group("/teachers"), deps.TeacherSvc, "O'qituvchilar", authz, crudActions{
		view:   permission.TeachersView,
		create: permission.TeachersCreate,
		edit:   permission.TeachersEdit,
		delete: permission.TeachersDelete,
	})
	registerEmployeeAPI(g.Group("/employees"), deps.EmployeeSvc, authz)

	registerAssignmentAPI(g.Group("/assignments"), deps.AssignmentSvc, authz)
	registerTeacherAssignmentAPI(g.Group("/teacher-assignments"), deps.TeacherAssignmentSvc, authz)
	registerPermissionAPI(g.Group("/permissions"), deps.PermissionSvc, authz)
	registerInterviewAPI(g, deps)

	g.GET("/dashboard", dashboardStats(deps.DashboardSvc), permMiddleware(authz, permission.DashboardView))
}

func dashboardStats(svc dashboard.Service) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		st, err := svc.Stats(ctx.Request().Context())
		if err != nil {
			return errors.Wrap(err, "computing dashboard stats")
		}
		return ctx.JSON(http.StatusOK, st)
	}
}

type assignmentApi struct {
	svc assignment.Service
}

func registerAssignmentAPI(g *echo.Group, svc assignment.Service, authz permission.Authorizer) {
	api := assignmentApi{svc: svc}
	view, create, edit, del := crudActions{
		view:   permission.StudentAssignmentsView,
		create: permission.StudentAssignmentsCreate,
		edit:   permission.StudentAssignmentsEdit,
		delete: permission.StudentAssignmentsDelete,
	}.middlewares(authz)

	g.GET("", api.query, view)
	g.POST("", api.create, create)
	g.GET("/:id", api.retrieve, view)
	g.PUT("/:id", api.update, edit)
	g.DELETE("/:id", api.destroy, del)
}

func (api *assignmentApi) query(ctx echo.Context) error {
	var filter assignment.Filter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to Filter")
	}
	as, err := api.svc.List(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing assignments")
	}
	return ctx.JSON(http.StatusOK, as)
}

func (api *assignmentApi) create(ctx echo.Context) error {
	var data assignment.Input
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Input")
	}
	a, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *assignmentApi) retrieve(ctx echo.Context) error {
	a, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) update(ctx echo.Context) error {
	var data assignment.Input
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Input")
	}
	a, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *assignmentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type teacherAssignmentApi struct {
	svc assignment.TeacherService
}

func registerTeacherAssignmentAPI(g *echo.Group, svc assignment.TeacherService, authz permission.Authorizer) {
	api := teacherAssignmentApi{svc: svc}
	view, create, edit, del := crudActions{
		view:   permission.TeacherAssignmentsView,
		create: permission.TeacherAssignmentsCreate,
		edit:   permission.TeacherAssignmentsEdit,
		delete: permission.TeacherAssignmentsDelete,
	}.middlewares(authz)

	g.GET("", api.query, view)
	g.POST("", api.create, create)
	g.GET("/:id", api.retrieve, view)
	g.PUT("/:id", api.update, edit)
	g.DELETE("/:id", api.destroy, del)
}

func (api *teacherAssignmentApi) query(ctx echo.Context) error {
	var filter assignment.Filter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to Filter")
	}
	tas, err := api.svc.List(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing teacher assignments")
	}
	return ctx.JSON(http.StatusOK, tas)
}

func (api *teacherAssignmentApi) create(ctx echo.Context) error {
	var data assignment.Input
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Input")
	}
	ta, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating teacher assignment")
	}
	return ctx.JSON(http.StatusCreated, ta)
}

func (api *teacherAssignmentApi) retrieve(ctx echo.Context) error {
	ta, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting teacher assignment")
	}
	return ctx.JSON(http.StatusOK, ta)
}

func (api *teacherAssignmentApi) update(ctx echo.Context) error {
	var data assignment.Input
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Input")
	}
	ta, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating teacher assignment")
	}
	return ctx.JSON(http.StatusOK, ta)
}

func (api *teacherAssignmentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting teacher assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type permissionApi struct {
	svc permission.Service
}

func registerPermissionAPI(g *echo.Group, svc permission.Service, authz permission.Authorizer) {
	api := permissionApi{svc: svc}

	g.GET("", api.query, permMiddleware(authz, permission.PermissionsView))
	g.GET("/actions", api.actions, permMiddleware(authz, permission.PermissionsView))
	g.PUT("", api.upsert, permMiddleware(authz, permission.PermissionsEdit))
	g.DELETE("/:id", api.destroy, permMiddleware(authz, permission.PermissionsDelete))
}

func (api *permissionApi) query(ctx echo.Context) error {
	sets, err := api.svc.List(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing permission sets")
	}
	return ctx.JSON(http.StatusOK, sets)
}

func (api *permissionApi) actions(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Actions())
}

// upsert replies 204 when the empty action list deleted the set.
func (api *permissionApi) upsert(ctx echo.Context) error {
	var data permission.UpsertInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpsertInput")
	}
	if err := ctx.Validate(&data); err != nil {
		return err
	}

	set, err := api.svc.Upsert(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "upserting permission set")
	}
	if set == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	return ctx.JSON(http.StatusOK, set)
}

func (api *permissionApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting permission set")
	}
	return ctx.NoContent(http.StatusNoContent)
}

type interviewApi struct {
	svc         interview.AdminService
	feedbackSvc feedback.Service
	covers      CoverUploader
}

func registerInterviewAPI(g *echo.Group, deps ServerDeps) {
	api := interviewApi{svc: deps.AdminInterviewSvc, feedbackSvc: deps.FeedbackSvc, covers: deps.Covers}
	authz := deps.Authorizer
	view, create, edit, del := crudActions{
		view:   permission.InterviewCreationView,
		create: permission.InterviewCreationCreate,
		edit:   permission.InterviewCreationEdit,
		delete: permission.InterviewCreationDelete,
	}.middlewares(authz)

	ig := g.Group("/interviews")
	ig.GET("", api.query, view)
	ig.POST("", api.create, create)
	ig.GET("/available", api.available, view)
	ig.GET("/teachers", api.teachersByClass, view)
	ig.GET("/:id", api.retrieve, view)
	ig.GET("/:id/results", api.results, permMiddleware(authz, permission.InterviewsViewFeedback))
	ig.PUT("/:id", api.update, edit)
	ig.DELETE("/:id", api.destroy, del)

	g.POST("/upload-image", api.uploadImage, create)
}

func (api *interviewApi) query(ctx echo.Context) error {
	var filter interview.AdminFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to AdminFilter")
	}
	ais, err := api.svc.List(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "listing interviews")
	}
	return ctx.JSON(http.StatusOK, ais)
}

func (api *interviewApi) available(ctx echo.Context) error {
	ais, err := api.svc.Available(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "listing available interviews")
	}
	return ctx.JSON(http.StatusOK, ais)
}

func (api *interviewApi) teachersByClass(ctx echo.Context) error {
	teachers, err := api.svc.TeachersByClass(ctx.Request().Context(), ctx.QueryParam("classId"), ctx.QueryParam("academicYear"))
	if err != nil {
		return errors.Wrap(err, "listing class teachers")
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *interviewApi) create(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	var data interview.AdminInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdminInput")
	}

	ai, err := api.svc.Create(ctx.Request().Context(), data, usr.ID)
	if err != nil {
		return errors.Wrap(err, "creating interview")
	}
	return ctx.JSON(http.StatusCreated, ai)
}

func (api *interviewApi) retrieve(ctx echo.Context) error {
	ai, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting interview")
	}
	return ctx.JSON(http.StatusOK, ai)
}

func (api *interviewApi) results(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	ai, err := api.svc.Get(reqCtx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting interview")
	}
	results, err := api.feedbackSvc.ForInterview(reqCtx, ai.ID)
	if err != nil {
		return errors.Wrap(err, "listing interview results")
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *interviewApi) update(ctx echo.Context) error {
	var data interview.AdminInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdminInput")
	}
	ai, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating interview")
	}
	return ctx.JSON(http.StatusOK, ai)
}

func (api *interviewApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting interview")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *interviewApi) uploadImage(ctx echo.Context) error {
	fh, err := ctx.FormFile(coverField)
	if err != nil {
		return core.NewInvalid(blobsvc.ErrNoFile)
	}
	file, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening uploaded file")
	}
	defer file.Close()

	url, err := api.covers.Upload(ctx.Request().Context(), fh.Filename, fh.Header.Get(echo.HeaderContentType), file)
	if err != nil {
		return errors.Wrap(err, "uploading cover")
	}
	return ctx.JSON(http.StatusOK, UploadResponse{Success: true, URL: url})
}

type UploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
}
