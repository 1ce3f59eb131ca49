package echoapi

import (
	"bytes"
	"io"
	"net/http"
	"net/mail"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/kitobai/kitob/core"
	"github.com/kitobai/kitob/core/assignment"
	"github.com/kitobai/kitob/core/feedback"
	"github.com/kitobai/kitob/core/interview"
	"github.com/kitobai/kitob/core/member"
	"github.com/kitobai/kitob/core/permission"
	"github.com/kitobai/kitob/core/user"
	exportsvc "github.com/kitobai/kitob/services/export"
)

type panelApi struct {
	teacherSvc     member.PersonService
	studentSvc     member.PersonService
	assignmentSvc  assignment.Service
	teacherAssnSvc assignment.TeacherService
	adminSvc       interview.AdminService
	generatedSvc   interview.GeneratedService
	feedbackSvc    feedback.Service
	mailSvc        core.EmailService
}

// registerPanelAPI serves the Teacher and Student panels, and the generated interviews every user may take.
func registerPanelAPI(authed *echo.Group, deps ServerDeps) {
	api := panelApi{
		teacherSvc:     deps.TeacherSvc,
		studentSvc:     deps.StudentSvc,
		assignmentSvc:  deps.AssignmentSvc,
		teacherAssnSvc: deps.TeacherAssignmentSvc,
		adminSvc:       deps.AdminInterviewSvc,
		generatedSvc:   deps.GeneratedSvc,
		feedbackSvc:    deps.FeedbackSvc,
		mailSvc:        deps.Mail,
	}
	authz := deps.Authorizer
	canView := permMiddleware(authz, permission.InterviewsView)
	canViewFeedback := permMiddleware(authz, permission.InterviewsViewFeedback)

	tg := authed.Group("/teacher", roleMiddleware(user.RoleTeacher))
	tg.GET("/me", api.teacherMe)
	tg.GET("/interviews", api.teacherInterviews, canView)
	tg.GET("/interviews/:id/results", api.teacherResults, canViewFeedback)
	tg.GET("/interviews/:id/results/export", api.exportTeacherResults, canViewFeedback)
	tg.POST("/interviews/:id/results/email", api.emailTeacherResults, canViewFeedback)
	tg.GET("/interviews/:id/results/:userId", api.teacherResult, canViewFeedback)

	sg := authed.Group("/student", roleMiddleware(user.RoleStudent))
	sg.GET("/me", api.studentMe)
	sg.GET("/interviews", api.studentInterviews, canView)
	sg.GET("/interviews/:id", api.studentInterview, canView)
	sg.GET("/interviews/:id/feedback", api.studentFeedback, canViewFeedback)
	sg.GET("/feedbacks", api.studentFeedbacks, canViewFeedback)

	authed.GET("/interviews/latest", api.latestInterviews)
	authed.GET("/interviews/mine", api.myInterviews)
	authed.GET("/interviews/:id", api.generatedInterview)
	authed.POST("/feedback", api.createFeedback)
	authed.GET("/feedback/:id", api.retrieveFeedback)
}

// Teacher

func (api *panelApi) teacherMe(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	teacher, branchID, err := api.teacherAssnSvc.BranchForTeacherUser(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "getting teacher branch")
	}
	return ctx.JSON(http.StatusOK, TeacherMeResponse{Teacher: teacher, BranchID: branchID})
}

func (api *panelApi) teacherInterviews(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	ais, err := api.adminSvc.ForTeacher(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "listing teacher interviews")
	}
	return ctx.JSON(http.StatusOK, ais)
}

// ownInterview returns the interview of the :id param when it belongs to the context teacher.
func (api *panelApi) ownInterview(ctx echo.Context) (interview.AdminInterview, error) {
	usr, err := contextUser(ctx)
	if err != nil {
		return interview.AdminInterview{}, err
	}
	reqCtx := ctx.Request().Context()
	teacher, err := api.teacherSvc.GetByUserID(reqCtx, usr.ID)
	if err != nil {
		return interview.AdminInterview{}, errors.Wrap(err, "getting teacher by user ID")
	}
	ai, err := api.adminSvc.Get(reqCtx, ctx.Param("id"))
	if err != nil {
		return interview.AdminInterview{}, errors.Wrap(err, "getting interview")
	}
	if ai.TeacherID != teacher.ID {
		return interview.AdminInterview{}, errHttpForbidden
	}
	return ai, nil
}

func (api *panelApi) teacherResults(ctx echo.Context) error {
	ai, err := api.ownInterview(ctx)
	if err != nil {
		return err
	}
	results, err := api.feedbackSvc.ForInterview(ctx.Request().Context(), ai.ID)
	if err != nil {
		return errors.Wrap(err, "listing interview results")
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *panelApi) exportTeacherResults(ctx echo.Context) error {
	ai, err := api.ownInterview(ctx)
	if err != nil {
		return err
	}
	results, err := api.feedbackSvc.ForInterview(ctx.Request().Context(), ai.ID)
	if err != nil {
		return errors.Wrap(err, "listing interview results")
	}
	return sendXLSX(ctx, "natijalar.xlsx", func(w io.Writer) error {
		return exportsvc.Results(w, results)
	})
}

// emailTeacherResults mails the results workbook to the context teacher.
func (api *panelApi) emailTeacherResults(ctx echo.Context) error {
	ai, err := api.ownInterview(ctx)
	if err != nil {
		return err
	}
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	results, err := api.feedbackSvc.ForInterview(ctx.Request().Context(), ai.ID)
	if err != nil {
		return errors.Wrap(err, "listing interview results")
	}
	var buf bytes.Buffer
	if err = exportsvc.Results(&buf, results); err != nil {
		return errors.Wrap(err, "writing workbook")
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Suhbat natijalari: " + ai.BookName,
		TemplateName: "interview_results",
		TemplateData: map[string]string{
			"Name":      usr.Name,
			"BookName":  ai.BookName,
			"ClassName": ai.ClassName,
			"Count":     strconv.Itoa(len(results)),
		},
	}
	msg.Attach(buf.Bytes(), "natijalar.xlsx", exportsvc.ContentType)
	api.mailSvc.SendMessages(msg)
	return ctx.NoContent(http.StatusAccepted)
}

func (api *panelApi) teacherResult(ctx echo.Context) error {
	ai, err := api.ownInterview(ctx)
	if err != nil {
		return err
	}
	fb, err := api.feedbackSvc.ByInterview(ctx.Request().Context(), ai.ID, ctx.Param("userId"))
	if err != nil {
		return errors.Wrap(err, "getting interview result")
	}
	return ctx.JSON(http.StatusOK, fb)
}

// Student

func (api *panelApi) studentMe(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	reqCtx := ctx.Request().Context()
	student, err := api.studentSvc.GetByUserID(reqCtx, usr.ID)
	if err != nil {
		return errors.Wrap(err, "getting student by user ID")
	}
	as, err := api.assignmentSvc.ForStudentUser(reqCtx, usr.ID)
	if err != nil {
		return errors.Wrap(err, "listing student assignments")
	}
	return ctx.JSON(http.StatusOK, StudentMeResponse{Student: student, Assignments: as})
}

func (api *panelApi) studentInterviews(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	ais, err := api.adminSvc.AvailableForStudent(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "listing student interviews")
	}
	for i := range ais {
		ais[i] = ais[i].WithoutAnswers()
	}
	return ctx.JSON(http.StatusOK, ais)
}

func (api *panelApi) studentInterview(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	si, err := api.adminSvc.StudentView(ctx.Request().Context(), ctx.Param("id"), usr.ID)
	if err != nil {
		return errors.Wrap(err, "getting student interview")
	}
	return ctx.JSON(http.StatusOK, si)
}

func (api *panelApi) studentFeedback(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	fb, err := api.feedbackSvc.ByInterview(ctx.Request().Context(), ctx.Param("id"), usr.ID)
	if err != nil {
		return errors.Wrap(err, "getting interview feedback")
	}
	return ctx.JSON(http.StatusOK, fb)
}

func (api *panelApi) studentFeedbacks(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	fbs, err := api.feedbackSvc.ByUser(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "listing feedbacks")
	}
	return ctx.JSON(http.StatusOK, fbs)
}

// Generated interviews

func (api *panelApi) latestInterviews(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	gs, err := api.generatedSvc.Latest(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "listing latest interviews")
	}
	return ctx.JSON(http.StatusOK, gs)
}

func (api *panelApi) myInterviews(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	gs, err := api.generatedSvc.ByUser(ctx.Request().Context(), usr.ID)
	if err != nil {
		return errors.Wrap(err, "listing user interviews")
	}
	return ctx.JSON(http.StatusOK, gs)
}

func (api *panelApi) generatedInterview(ctx echo.Context) error {
	g, err := api.generatedSvc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting interview")
	}
	return ctx.JSON(http.StatusOK, g)
}

func (api *panelApi) createFeedback(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	var data feedback.CreateInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to CreateInput")
	}
	if err = ctx.Validate(&data); err != nil {
		return err
	}
	// the answers of admin interviews are read on the server
	data.UserID = usr.ID
	data.Answers = nil

	id, err := api.feedbackSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating feedback")
	}
	return ctx.JSON(http.StatusCreated, FeedbackResponse{Success: true, FeedbackID: id})
}

// retrieveFeedback only shows users their own feedback.
func (api *panelApi) retrieveFeedback(ctx echo.Context) error {
	usr, err := contextUser(ctx)
	if err != nil {
		return err
	}
	fb, err := api.feedbackSvc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting feedback")
	}
	if fb.UserID != usr.ID {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, fb)
}

type (
	TeacherMeResponse struct {
		Teacher  member.Teacher `json:"teacher"`
		BranchID *string        `json:"branchId"`
	}

	StudentMeResponse struct {
		Student     member.Student          `json:"student"`
		Assignments []assignment.Assignment `json:"assignments"`
	}

	FeedbackResponse struct {
		Success    bool   `json:"success"`
		FeedbackID string `json:"feedbackId"`
	}
)
